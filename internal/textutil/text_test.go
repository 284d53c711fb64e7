package textutil

import (
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestDetectBinary(t *testing.T) {
	if DetectBinary(nil) {
		t.Fatalf("empty should not be binary")
	}
	if !DetectBinary([]byte{1, 2, 0, 3}) {
		t.Fatalf("nul byte should be binary")
	}
	if !DetectBinary([]byte{1, 2, 3, 4, 5, 6, 7, 'a'}) {
		t.Fatalf("high control-ratio should be binary")
	}
	if DetectBinary([]byte("hello\nworld\t123")) {
		t.Fatalf("plain text should not be binary")
	}
	if DetectBinary([]byte{0xFF, 0xFE, 'a', 0}) {
		t.Fatalf("utf-16 with BOM should not be binary")
	}
}

func TestDecodeUTF8(t *testing.T) {
	dec, err := Decode([]byte("hello"))
	if err != nil || dec.Encoding != "utf-8" || dec.Text != "hello" {
		t.Fatalf("utf8 decode failed: %+v %v", dec, err)
	}
	dec, err = Decode(append([]byte{0xEF, 0xBB, 0xBF}, "ab"...))
	if err != nil || dec.Text != "ab" {
		t.Fatalf("bom not stripped: %+v %v", dec, err)
	}
}

func TestDecodeShiftJIS(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("日本語のテキスト"))
	if err != nil {
		t.Fatalf("encode sjis: %v", err)
	}
	dec, err := Decode(sjis)
	if err != nil {
		t.Fatalf("sjis decode failed: %v", err)
	}
	if dec.Text != "日本語のテキスト" || dec.Encoding != "shift_jis" {
		t.Fatalf("unexpected decoded text: %+v", dec)
	}
}

func TestDecodeUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte("あい"))
	if err != nil {
		t.Fatalf("encode utf16: %v", err)
	}
	dec, err := Decode(b)
	if err != nil || dec.Text != "あい" || dec.Encoding != "utf-16" {
		t.Fatalf("utf16 decode failed: %+v %v", dec, err)
	}
}

func TestHashSHA256(t *testing.T) {
	h := HashSHA256([]byte("abc"))
	if len(h) != 64 {
		t.Fatalf("unexpected sha length: %d", len(h))
	}
	if h != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected digest: %s", h)
	}
}
