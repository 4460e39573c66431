package chat

import (
	"fmt"
	"slices"
	"testing"
)

func collect(d *streamDecoder, chunks ...[]byte) []string {
	var payloads []string
	for _, chunk := range chunks {
		payloads = append(payloads, d.feed(chunk)...)
	}
	return payloads
}

func TestDecoderFragmentationInvariant(t *testing.T) {
	raw := []byte("data: {\"text\":\"Yes, \"}\n\ndata: {\"text\":\"it is.\"}\n\ndata: [DONE]\n\n")

	var whole streamDecoder
	want := collect(&whole, raw)
	if len(want) != 3 {
		t.Fatalf("whole-buffer payloads = %v, want 3", want)
	}

	// Every two-chunk split of the same bytes must produce the same payloads.
	for i := 1; i < len(raw); i++ {
		var d streamDecoder
		got := collect(&d, raw[:i], raw[i:])
		if !slices.Equal(got, want) {
			t.Errorf("split at %d: payloads = %v, want %v", i, got, want)
		}
	}

	// So must feeding one byte at a time.
	var d streamDecoder
	var got []string
	for i := range raw {
		got = append(got, d.feed(raw[i:i+1])...)
	}
	if !slices.Equal(got, want) {
		t.Errorf("byte-at-a-time payloads = %v, want %v", got, want)
	}
}

func TestDecoderMultiByteRuneAcrossChunks(t *testing.T) {
	// "café ☕" contains two multi-byte UTF-8 sequences; every split point,
	// including ones landing inside a rune, must reassemble them intact.
	raw := []byte("data: {\"text\":\"café ☕\"}\n\n")

	for i := 1; i < len(raw); i++ {
		var d streamDecoder
		got := collect(&d, raw[:i], raw[i:])
		if len(got) != 1 || got[0] != `{"text":"café ☕"}` {
			t.Fatalf("split at %d: payloads = %q", i, got)
		}
	}
}

func TestDecoderHoldsPartialRecord(t *testing.T) {
	var d streamDecoder

	if got := d.feed([]byte("data: {\"text\":\"incompl")); len(got) != 0 {
		t.Fatalf("partial record must not be parsed, got %v", got)
	}
	if got := d.feed([]byte("ete\"}\n")); len(got) != 0 {
		t.Fatalf("record without blank line must not be parsed, got %v", got)
	}
	got := d.feed([]byte("\n"))
	if len(got) != 1 || got[0] != `{"text":"incomplete"}` {
		t.Fatalf("payloads = %v", got)
	}
}

func TestDecoderIgnoresNonDataLines(t *testing.T) {
	var d streamDecoder
	got := d.feed([]byte("event: message\nid: 7\ndata: {\"text\":\"hi\"}\n\n"))
	if len(got) != 1 || got[0] != `{"text":"hi"}` {
		t.Fatalf("payloads = %v", got)
	}
}

func TestDecoderCRLFRecords(t *testing.T) {
	var d streamDecoder
	got := d.feed([]byte("data: {\"text\":\"hi\"}\r\n\ndata: [DONE]\r\n\n"))
	want := []string{`{"text":"hi"}`, "[DONE]"}
	if !slices.Equal(got, want) {
		t.Fatalf("payloads = %v, want %v", got, want)
	}
}

func TestDecoderManyRecordsInOneChunk(t *testing.T) {
	var raw []byte
	var want []string
	for i := 0; i < 50; i++ {
		payload := fmt.Sprintf(`{"text":"tok%d"}`, i)
		raw = append(raw, []byte("data: "+payload+"\n\n")...)
		want = append(want, payload)
	}

	var d streamDecoder
	if got := d.feed(raw); !slices.Equal(got, want) {
		t.Fatalf("payloads = %v, want %v", got, want)
	}
}
