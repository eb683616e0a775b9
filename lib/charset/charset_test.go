package charset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"empty", "", []byte{}, false},
		{"upper", "50656E", []byte("Pen"), false},
		{"lower", "50656e", []byte("Pen"), false},
		{"odd length", "506", nil, true},
		{"non hex", "5G", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHex(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrMalformedHex), "DecodeHex(%q) error = %v", tt.input, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGSM8(t *testing.T) {
	assert.Equal(t, "50656E646572", TextToGSM8Hex("Pender"))

	text, err := GSM8ToText("50656e646572")
	require.NoError(t, err)
	assert.Equal(t, "Pender", text)

	t.Run("extension characters", func(t *testing.T) {
		assert.Equal(t, "1B65", TextToGSM8Hex("€"))
		assert.Equal(t, "1B281B29", TextToGSM8Hex("{}"))
	})

	t.Run("unmapped encodes as dot", func(t *testing.T) {
		assert.Equal(t, "2E2E", TextToGSM8Hex("ж✓"))
	})

	t.Run("unmapped bytes decode as question mark", func(t *testing.T) {
		got, err := GSM8ToText("41FF1B")
		require.NoError(t, err)
		assert.Equal(t, "A??", got)
	})

	t.Run("escape falls back to default table", func(t *testing.T) {
		got, err := GSM8ToText("1B41")
		require.NoError(t, err)
		assert.Equal(t, "A", got)
	})
}

func TestGSM8RoundTrip(t *testing.T) {
	var all strings.Builder
	for i, r := range gsmDefault {
		if i == EscapeByte {
			continue
		}
		all.WriteRune(r)
	}
	for _, r := range gsmExtension {
		all.WriteRune(r)
	}

	inputs := []string{
		"",
		"Hello, World!",
		"Ψ ΔΦΓ £100 @home",
		"a[b]{c}|d~e^f\\€",
		all.String(),
	}
	for _, in := range inputs {
		got, err := GSM8ToText(TextToGSM8Hex(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestPackSeptets(t *testing.T) {
	hex, n := TextToGSM7Hex("hello")
	assert.Equal(t, "E8329BFD06", hex)
	assert.Equal(t, 5, n)

	hex, n = TextToGSM7Hex("hellohello")
	assert.Equal(t, "E8329BFD4697D9EC37", hex)
	assert.Equal(t, 10, n)
}

func TestGSM7RoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		"hello",
		"1234567",
		"12345678",
		"this is a SR from 0611 to 1234",
		"Prix: 5€ [promo]",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			hex, n := TextToGSM7Hex(in)
			got, err := GSM7HexToText(hex, n)
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestUnpackSeptetsDerivedCount(t *testing.T) {
	// Seven septets leave a zero septet in the last octet.
	hex, _ := TextToGSM7Hex("1234567")
	got, err := GSM7HexToText(hex, 0)
	require.NoError(t, err)
	assert.Equal(t, "1234567", got)

	hex, _ = TextToGSM7Hex("hello")
	got, err = GSM7HexToText(hex, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestUnicode(t *testing.T) {
	assert.Equal(t, "00480069", UnicodeEncode("Hi"))
	assert.Equal(t, "00E920AC", UnicodeEncode("é€"))
	assert.Equal(t, "003F", UnicodeEncode("😀"))

	got, err := UnicodeDecode("041F04400438")
	require.NoError(t, err)
	assert.Equal(t, "При", got)

	_, err = UnicodeDecode("00480")
	assert.ErrorIs(t, err, ErrMalformedHex)
	_, err = UnicodeDecode("004800")
	assert.ErrorIs(t, err, ErrMalformedHex)
}

func TestUnicodeRoundTrip(t *testing.T) {
	inputs := []string{"", "Hello", "Grüße aus Köln", "Привет", "中文短信", "€ ¤ ș"}
	for _, in := range inputs {
		got, err := UnicodeDecode(UnicodeEncode(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestLegacyLatinTable(t *testing.T) {
	legacy := Codec{LegacyLatin: true}

	p := legacy.Encode("¤", Unicode)
	assert.Equal(t, "20AC", p.Hex)

	var latin strings.Builder
	for r := rune(0); r < 0x100; r++ {
		latin.WriteRune(r)
	}
	p = legacy.Encode(latin.String(), Unicode)
	got, err := legacy.Decode(p.Hex, Unicode, 0)
	require.NoError(t, err)
	assert.Equal(t, latin.String(), got)
}

func TestCodecPayloadBits(t *testing.T) {
	var c Codec

	p := c.Encode("hello", GSM7)
	assert.Equal(t, 35, p.Bits())

	p = c.Encode("hello", GSM8)
	assert.Equal(t, 40, p.Bits())

	p = c.Encode("hello", Unicode)
	assert.Equal(t, 80, p.Bits())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", GSM8, false},
		{"GSM8", GSM8, false},
		{"gsm7", GSM7, false},
		{"Unicode", Unicode, false},
		{"ucs2", Unicode, false},
		{"latin1", GSM8, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		xser string
		mt   string
		want Format
	}{
		{"", "", GSM8},
		{"020108", "4", Unicode},
		{"02011B", "", Unicode},
		{"020138", "4", Unicode},
		{"02010C", "4", GSM8},
		{"0201F4", "4", GSM8},
		{"020100", "4", GSM7},
		{"020100", "3", GSM8},
		{"01020605020108", "4", Unicode},
		{"0201", "4", GSM8},
		{"zz020108", "4", Unicode},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.xser, tt.mt); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %v, want %v", tt.xser, tt.mt, got, tt.want)
		}
	}
}

func TestIsUnicodeDCS(t *testing.T) {
	for dcs := 0; dcs < 0x100; dcs++ {
		lo := dcs & 0x0F
		hi := dcs & 0xF0
		want := hi <= 0x30 && lo >= 0x08 && lo <= 0x0B
		if got := IsUnicodeDCS(byte(dcs)); got != want {
			t.Errorf("IsUnicodeDCS(%02X) = %v, want %v", dcs, got, want)
		}
	}
}

func TestAlphanumericAddress(t *testing.T) {
	for _, addr := range []string{"A", "MyShop", "ABCDEFG", "Operator1", "BANK-INFO"} {
		enc := EncodeAlphanumericAddress(addr)
		got, err := DecodeAlphanumericAddress(enc)
		require.NoError(t, err, addr)
		assert.Equal(t, addr, got)
	}

	_, err := DecodeAlphanumericAddress("0")
	assert.ErrorIs(t, err, ErrMalformedHex)
}

func TestIsNumericAddress(t *testing.T) {
	assert.True(t, IsNumericAddress("0611223344"))
	assert.False(t, IsNumericAddress(""))
	assert.False(t, IsNumericAddress("MyShop"))
	assert.False(t, IsNumericAddress("+33611"))
}

func TestIRA(t *testing.T) {
	assert.Equal(t, "736563726574", TextToIRA("secret"))
	got, err := IRAToText("736563726574")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}
