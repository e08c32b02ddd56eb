package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/internal/doc"
)

func parse(t *testing.T, src string) Config {
	t.Helper()
	n, err := doc.DecodeJSON([]byte(src), "idl.bindings.interop.output_hints")
	require.NoError(t, err)
	cfg, err := ParseConfig(n)
	require.NoError(t, err)
	return cfg
}

func TestResolveDefaultPattern(t *testing.T) {
	r := NewResolver(Config{}, "lumenrtc")
	got, err := r.Resolve(Section{Name: "Interop.Structs", Default: "Interop.Structs.g.cs"})
	require.NoError(t, err)
	assert.Equal(t, "Interop.Structs.g.cs", got)
}

func TestResolveTokens(t *testing.T) {
	cfg := parse(t, `{"pattern": "{target}/{class}/{section_pascal}.g"}`)
	r := NewResolver(cfg, "lumenrtc")

	got, err := r.Resolve(Section{Name: "RtpSender.Handle", Namespace: "LumenRTC", Default: "RtpSender.Handle.g.cs"})
	require.NoError(t, err)
	assert.Equal(t, "lumenrtc/RtpSender/RtpSenderHandle.g.cs", got)
}

func TestResolveAllTokenForms(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"{section}", "RtpSender.Abi.cs"},
		{"{section_snake}", "rtp_sender_abi.cs"},
		{"{section_kebab}", "rtp-sender-abi.cs"},
		{"{section_path}", "RtpSender/Abi.cs"},
		{"{namespace_path}/{default_stem}", "LumenRTC/Interop/RtpSender.Abi.cs"},
		{"{namespace}.{class}", "LumenRTC.Interop.RtpSender.cs"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			r := NewResolver(Config{Pattern: tt.pattern}, "x")
			got, err := r.Resolve(Section{Name: "RtpSender.Abi", Namespace: "LumenRTC.Interop", Default: "RtpSender.Abi.g.cs"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixAndDirectoryOnExplicit(t *testing.T) {
	section := Section{Name: "Interop.Enums", Default: "Interop.Enums.g.cs"}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "computed name gets prefix and directory",
			src:  `{"prefix": "Gen.", "directory": "Generated"}`,
			want: "Generated/Gen.Interop.Enums.g.cs",
		},
		{
			name: "explicit name is left alone by default",
			src:  `{"prefix": "Gen.", "directory": "Generated", "sections": {"Interop.Enums": "Enums/All.cs"}}`,
			want: "Enums/All.cs",
		},
		{
			name: "explicit name with prefix only",
			src:  `{"prefix": "Gen.", "directory": "Generated", "apply_prefix_to_explicit": true, "sections": {"Interop.Enums": "Enums/All.cs"}}`,
			want: "Enums/Gen.All.cs",
		},
		{
			name: "explicit name with directory only",
			src:  `{"prefix": "Gen.", "directory": "Generated", "apply_directory_to_explicit": true, "sections": {"Interop.Enums": "Enums/All.cs"}}`,
			want: "Generated/Enums/All.cs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(parse(t, tt.src), "x").Resolve(section)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownTokenIsStructural(t *testing.T) {
	cfg := parse(t, `{"sections": {"Interop.Enums": "{sektion}.cs"}}`)
	_, err := NewResolver(cfg, "x").Resolve(Section{Name: "Interop.Enums"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStructural)
	assert.Equal(t, "idl.bindings.interop.output_hints.sections.Interop.Enums", errors.PathOf(err))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`.\Generated\\Foo.cs`, "Generated/Foo.cs"},
		{"/abs//path/Foo", "abs/path/Foo.cs"},
		{"././Foo.g.cs", "Foo.g.cs"},
		{`Bad<name>:"x"|?*.cs`, "Bad_name___x____.cs"},
		{"tab\there", "tab_here.cs"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestMergeManagedWins(t *testing.T) {
	idl := parse(t, `{"pattern": "{default}", "prefix": "A.", "sections": {"X": "x.cs", "Y": "y.cs"}}`)
	managed := parse(t, `{"pattern": "{section_snake}", "sections": {"Y": "managed_y.cs"}}`)

	merged := idl.Merge(managed)
	assert.Equal(t, "{section_snake}", merged.Pattern)
	assert.Equal(t, "A.", merged.Prefix)
	assert.Equal(t, map[string]string{"X": "x.cs", "Y": "managed_y.cs"}, merged.Sections)
}

func TestParseConfigRejectsWrongTypes(t *testing.T) {
	n, err := doc.DecodeJSON([]byte(`{"pattern": 3}`), "managed_api.output_hints")
	require.NoError(t, err)
	_, err = ParseConfig(n)
	require.Error(t, err)
	assert.Equal(t, "managed_api.output_hints.pattern", errors.PathOf(err))
}
