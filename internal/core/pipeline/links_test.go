package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLinks(t *testing.T) {
	in := []Link{
		{Label: "Figma", URL: "javascript:alert(1)"},
		{Label: "Drive", URL: "https://drive.example/x"},
		{Label: "  ", URL: " http://staging.example "},
		{Label: "FTP", URL: "ftp://files.example"},
		{Label: "Empty", URL: ""},
		{Label: "Upper", URL: "HTTPS://EXAMPLE.COM/a"},
	}

	got := NormalizeLinks(in, "Link")
	assert.Equal(t, []Link{
		{Label: "Drive", URL: "https://drive.example/x"},
		{Label: "Link", URL: "http://staging.example"},
		{Label: "Upper", URL: "HTTPS://EXAMPLE.COM/a"},
	}, got)
}

func TestNormalizeLinks_RequireLabel(t *testing.T) {
	got := NormalizeLinks([]Link{
		{Label: "", URL: "https://a.example"},
		{Label: "Spec", URL: "https://b.example"},
	}, "")
	assert.Equal(t, []Link{{Label: "Spec", URL: "https://b.example"}}, got)
}

func TestNormalizeLinks_Empty(t *testing.T) {
	assert.Empty(t, NormalizeLinks(nil, "Link"))
}
