package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        Kind
	}{
		{"image/png", KindImage},
		{"image/jpeg", KindImage},
		{"IMAGE/GIF", KindImage},
		{"text/html; charset=utf-8", KindPlainText},
		{"text/plain", KindPlainText},
		{"application/pdf", KindPdf},
		{" application/pdf ", KindPdf},
		{"application/xml", KindUnsupported},
		{"image/webp", KindUnsupported},
		{"application/json", KindUnsupported},
		{"", KindUnsupported},
		{"text/html; charset", KindPlainText},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "", MediaType("   "))
	assert.Equal(t, "text/html", MediaType("Text/HTML; charset=ISO-8859-1"))
	assert.Equal(t, "application/pdf", MediaType("application/pdf"))
}
