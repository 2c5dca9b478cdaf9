package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"utf-8 bom", []byte("\xEF\xBB\xBFCatégorie"), EncodingUTF8},
		{"plain ascii", []byte("Version;Code EDI"), EncodingUTF8},
		{"utf-8 accents", []byte("Libellé article"), EncodingUTF8},
		// "Catégorie" in Windows-1252: é is a lone 0xE9 byte.
		{"windows-1252", []byte("Cat\xE9gorie"), EncodingWindows1252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.data))
		})
	}
}

func TestDecodeWindows1252(t *testing.T) {
	decoded, err := Decode([]byte("Cat\xE9gorie produit"), EncodingWindows1252)
	require.NoError(t, err)
	assert.Equal(t, "Catégorie produit", string(decoded))
}

func TestDecodeKeepsValidUTF8(t *testing.T) {
	input := []byte("Libellé article")
	decoded, err := Decode(input, EncodingWindows1252)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}
