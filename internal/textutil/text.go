package textutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

type Decoded struct {
	Text     string
	Encoding string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// 按顺序尝试的旧编码。日文编码优先，GB 系列几乎能解任何字节，放最后。
var legacyEncodings = []struct {
	Name string
	Enc  encoding.Encoding
}{
	{"shift_jis", japanese.ShiftJIS},
	{"euc-jp", japanese.EUCJP},
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
}

func DetectBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if hasUTF16BOM(sample) {
		return false
	}
	ctl := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b == 9 || b == 10 || b == 13 {
			continue
		}
		if b < 32 || b == 127 {
			ctl++
		}
	}
	ratio := float64(ctl) / float64(len(sample))
	return ratio > 0.30
}

// Decode 转成 UTF-8。UTF-8 BOM 会去掉，和浏览器粘贴进来的文本一致。
func Decode(data []byte) (Decoded, error) {
	if hasUTF16BOM(data) {
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err == nil {
			return Decoded{Text: string(out), Encoding: "utf-16"}, nil
		}
	}
	if utf8.Valid(data) {
		return Decoded{Text: string(bytes.TrimPrefix(data, utf8BOM)), Encoding: "utf-8"}, nil
	}
	for _, le := range legacyEncodings {
		out, err := le.Enc.NewDecoder().Bytes(data)
		if err != nil || !utf8.Valid(out) {
			continue
		}
		// 解码器遇到非法字节会替换成 U+FFFD，出现替换符说明编码猜错了。
		if strings.ContainsRune(string(out), utf8.RuneError) {
			continue
		}
		return Decoded{Text: string(out), Encoding: le.Name}, nil
	}
	return Decoded{}, fmt.Errorf("无法识别文本编码（支持 utf-8/utf-16/shift_jis/euc-jp/gb18030/gbk）")
}

func hasUTF16BOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF))
}

func HashSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
