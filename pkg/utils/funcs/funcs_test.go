package funcs

import (
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxtFuncMap(t *testing.T) {
	tmpl, err := template.New("t").Funcs(NewTxtFuncMap()).Parse(`id := {{ .id | quote }}`)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, map[string]string{"id": "20250401_000001"}))
	assert.Equal(t, `id := "20250401_000001"`, sb.String())
}
