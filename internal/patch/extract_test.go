package patch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExtractBlocks(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []EditBlock
	}{
		{
			name: "single block with anchor",
			spec: "<<<<<<< SEARCH\n:start_line:12\n-------\nold line\n=======\nnew line\n>>>>>>> REPLACE",
			want: []EditBlock{
				{AnchorLine: 12, SearchText: "old line", ReplaceText: "new line"},
			},
		},
		{
			name: "block without header separator",
			spec: "<<<<<<< SEARCH\n:start_line:3\nold\n=======\nnew\n>>>>>>> REPLACE",
			want: []EditBlock{
				{AnchorLine: 3, SearchText: "old", ReplaceText: "new"},
			},
		},
		{
			name: "block without any hint",
			spec: "<<<<<<< SEARCH\nold\n=======\nnew\n>>>>>>> REPLACE",
			want: []EditBlock{
				{AnchorLine: 0, SearchText: "old", ReplaceText: "new"},
			},
		},
		{
			name: "end_line hint is ignored",
			spec: "<<<<<<< SEARCH\n:start_line:7\n:end_line:9\n-------\nold\n=======\nnew\n>>>>>>> REPLACE",
			want: []EditBlock{
				{AnchorLine: 7, SearchText: "old", ReplaceText: "new"},
			},
		},
		{
			name: "multi-line bodies",
			spec: "<<<<<<< SEARCH\nfirst\nsecond\n=======\na\nb\nc\n>>>>>>> REPLACE",
			want: []EditBlock{
				{SearchText: "first\nsecond", ReplaceText: "a\nb\nc"},
			},
		},
		{
			name: "blocks sorted ascending by anchor",
			spec: "<<<<<<< SEARCH\n:start_line:30\n-------\nlate\n=======\nLATE\n>>>>>>> REPLACE\n" +
				"<<<<<<< SEARCH\n:start_line:10\n-------\nearly\n=======\nEARLY\n>>>>>>> REPLACE",
			want: []EditBlock{
				{AnchorLine: 10, SearchText: "early", ReplaceText: "EARLY"},
				{AnchorLine: 30, SearchText: "late", ReplaceText: "LATE"},
			},
		},
		{
			name: "escaped markers kept raw",
			spec: "<<<<<<< SEARCH\n\\=======\n=======\nresolved\n>>>>>>> REPLACE",
			want: []EditBlock{
				{SearchText: `\=======`, ReplaceText: "resolved"},
			},
		},
		{
			name: "empty search body",
			spec: "<<<<<<< SEARCH\n=======\nnew\n>>>>>>> REPLACE",
			want: []EditBlock{
				{SearchText: "", ReplaceText: "new"},
			},
		},
		{
			name: "empty replace body",
			spec: "<<<<<<< SEARCH\ngone\n=======\n>>>>>>> REPLACE",
			want: []EditBlock{
				{SearchText: "gone", ReplaceText: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBlocks(context.Background(), tt.spec, 0)
			if err != nil {
				t.Fatalf("ExtractBlocks() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d blocks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("block %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractBlocks_NoBlocks(t *testing.T) {
	for _, spec := range []string{"", "just prose, no markers", "<<<<<<< SEARCH\nnever closed"} {
		_, err := ExtractBlocks(context.Background(), spec, 0)
		var perr *PatchError
		if !errors.As(err, &perr) {
			t.Fatalf("ExtractBlocks(%q) error = %v, want *PatchError", spec, err)
		}
		if perr.Kind != ErrNoBlocks {
			t.Errorf("ExtractBlocks(%q) kind = %v, want ErrNoBlocks", spec, perr.Kind)
		}
	}
}

func TestExtractBlocks_DeadlineExceeded(t *testing.T) {
	// Large enough that the scan cannot finish inside a nanosecond, small
	// enough to stay fast when cancellation works.
	spec := strings.Repeat("filler line\n", 100000)

	done := make(chan struct{})
	var err error
	go func() {
		_, err = ExtractBlocks(context.Background(), spec, time.Nanosecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ExtractBlocks did not return, deadline not honored")
	}

	var perr *PatchError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PatchError", err)
	}
	if perr.Kind != ErrDeadline {
		t.Errorf("kind = %v, want ErrDeadline", perr.Kind)
	}
}

func TestExtractBlocks_CancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractBlocks(ctx, strings.Repeat("x\n", 10000), 0)
	var perr *PatchError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PatchError", err)
	}
	if perr.Kind != ErrDeadline {
		t.Errorf("kind = %v, want ErrDeadline", perr.Kind)
	}
}

func TestExtractBlocks_FreshStatePerCall(t *testing.T) {
	spec := "<<<<<<< SEARCH\n:start_line:5\n-------\nold\n=======\nnew\n>>>>>>> REPLACE"
	for i := 0; i < 3; i++ {
		blocks, err := ExtractBlocks(context.Background(), spec, 0)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(blocks) != 1 || blocks[0].AnchorLine != 5 {
			t.Fatalf("call %d: blocks = %+v", i, blocks)
		}
	}
}

func BenchmarkExtractBlocks(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("<<<<<<< SEARCH\n:start_line:1\n-------\nold\n=======\nnew\n>>>>>>> REPLACE\n")
	}
	spec := sb.String()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExtractBlocks(context.Background(), spec, 0); err != nil {
			b.Fatal(err)
		}
	}
}
