package partner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// inputs maps the name (or id) of each input/img element to its attributes.
func inputs(t *testing.T, fragment string) map[string]map[string]string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<table>" + fragment + "</table>"))
	require.NoError(t, err)

	out := make(map[string]map[string]string)
	for _, tag := range []string{"input", "img"} {
		for _, n := range findAll(doc, tag) {
			attrs := make(map[string]string)
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			key := attrs["name"]
			if key == "" {
				key = attrs["id"]
			}
			out[key] = attrs
		}
	}
	return out
}

func TestAddFormFields(t *testing.T) {
	got := inputs(t, string(AddFormFields()))

	require.Contains(t, got, FieldLogo)
	assert.Equal(t, "hidden", got[FieldLogo]["type"])
	assert.Equal(t, "", got[FieldLogo]["value"])

	require.Contains(t, got, "add_partner_logo")
	assert.Equal(t, "Select/Upload Image", got["add_partner_logo"]["value"])

	require.Contains(t, got, "partner_logo_preview")
	assert.Equal(t, "", got["partner_logo_preview"]["src"])
	assert.Equal(t, "max-width: 250px; width: 100%; height: auto", got["partner_logo_preview"]["style"])

	require.Contains(t, got, FieldURL)
	assert.Equal(t, "text", got[FieldURL]["type"])
	assert.Equal(t, "", got[FieldURL]["value"])
}

func TestEditFormFieldsPrefilled(t *testing.T) {
	s := newMemStore()
	term := s.addPartner("KQED", "42", "https://kqed.org/?a=1&b=\"2\"")
	assets := fakeAssets{known: map[int64]string{42: "https://cdn.test/kqed.png"}}

	out := string(EditFormFields(context.Background(), s, assets, term.ID))
	got := inputs(t, out)

	assert.Equal(t, "42", got[FieldLogo]["value"])
	assert.Equal(t, "https://cdn.test/kqed.png", got["partner_logo_preview"]["src"])
	assert.Equal(t, "https://kqed.org/?a=1&b=2", got[FieldURL]["value"])
	assert.NotContains(t, out, `b="2"`)
}

func TestEditFormFieldsDegrades(t *testing.T) {
	tests := []struct {
		name     string
		logo     string
		url      string
		wantLogo string
	}{
		{"nothing stored", "", "", "0"},
		{"deleted logo", "77", "", "77"},
		{"garbage logo", "abc", "javascript:alert(1)", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			term := s.addPartner("P", tt.logo, tt.url)

			got := inputs(t, string(EditFormFields(context.Background(), s, fakeAssets{}, term.ID)))
			assert.Equal(t, tt.wantLogo, got[FieldLogo]["value"])
			assert.Equal(t, "", got["partner_logo_preview"]["src"])
			assert.Equal(t, "", got[FieldURL]["value"])
		})
	}
}

func TestEditFormFieldsMetaError(t *testing.T) {
	s := newMemStore()
	term := s.addPartner("P", "42", "https://p.example")
	s.failMeta = true

	got := inputs(t, string(EditFormFields(context.Background(), s, fakeAssets{}, term.ID)))
	assert.Equal(t, "0", got[FieldLogo]["value"])
	assert.Equal(t, "", got[FieldURL]["value"])
}
