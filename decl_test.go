package xmlentity

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseXMLDecl(t *testing.T) {
	tests := []struct {
		Name     string
		Input    string
		TextDecl bool
		Expected *XMLDecl
		Error    bool
	}{
		{Name: "version only", Input: `<?xml version="1.0"?>`, Expected: &XMLDecl{Version: "1.0"}},
		{Name: "all three", Input: `<?xml version='1.1' encoding='euc-jp' standalone='yes' ?>`, Expected: &XMLDecl{Version: "1.1", Encoding: "euc-jp", Standalone: "yes"}},
		{Name: "blanks around equals", Input: "<?xml version = \"1.0\"\n\tencoding=\"cp932\"?>", Expected: &XMLDecl{Version: "1.0", Encoding: "cp932"}},
		{Name: "text declaration", Input: `<?xml encoding="UTF-8"?>`, TextDecl: true, Expected: &XMLDecl{Encoding: "UTF-8"}},
		{Name: "text declaration with version", Input: `<?xml version="1.0" encoding="UTF-8"?>`, TextDecl: true, Expected: &XMLDecl{Version: "1.0", Encoding: "UTF-8"}},
		{Name: "text declaration needs encoding", Input: `<?xml version="1.0"?>`, TextDecl: true, Error: true},
		{Name: "no standalone in text declaration", Input: `<?xml encoding="UTF-8" standalone="yes"?>`, TextDecl: true, Error: true},
		{Name: "missing version", Input: `<?xml encoding="UTF-8"?>`, Error: true},
		{Name: "bad version", Input: `<?xml version="x.0"?>`, Error: true},
		{Name: "missing equals", Input: `<?xml version "1.0"?>`, Error: true},
		{Name: "unquoted", Input: `<?xml version=1.0?>`, Error: true},
		{Name: "space required", Input: `<?xml version="1.0"encoding="UTF-8"?>`, Error: true},
		{Name: "bad standalone", Input: `<?xml version="1.0" standalone="maybe"?>`, Error: true},
		{Name: "not closed", Input: `<?xml version="1.0"`, Error: true},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			decl, err := parseXMLDecl([]byte(tc.Input), tc.TextDecl)
			if tc.Error {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Expected, decl)
		})
	}
}

func TestPeekDeclaration(t *testing.T) {
	long := `<?xml version="1.0" encoding="UTF-8"` + strings.Repeat(" ", 200) + `?><doc/>`

	tests := map[string]string{
		`<?xml version="1.0"?><doc/>`: `<?xml version="1.0"?>`,
		long:                          long[:len(long)-len("<doc/>")],
		`<doc/>`:                      "",
		`<?xml version="1.0"`:         "",
		`<?xml-stylesheet href="a"?>`: "",
	}

	for input, expected := range tests {
		r := bufio.NewReaderSize(strings.NewReader(input), 4096)
		got := peekDeclaration(r)
		require.Equal(t, expected, string(got), "input %q", input)

		// nothing was consumed
		rest, err := r.Peek(len(input))
		require.NoError(t, err)
		require.Equal(t, input, string(rest))
	}
}
