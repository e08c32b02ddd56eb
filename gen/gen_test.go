package gen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/interopgen/errors"
)

const e2eIDL = `{
  "header_types": {"structs": {
    "lrtc_rtp_encoding_settings_t": {"fields": [{"name": "active", "declaration": "int active"}]}
  }},
  "functions": [
    {"name": "lrtc_rtp_sender_release", "parameters": [{"name": "sender", "c_type": "lrtc_rtp_sender_t*"}]},
    {"name": "lrtc_rtp_sender_set_encoding_parameters", "c_return_type": "int", "parameters": [
      {"name": "sender", "c_type": "lrtc_rtp_sender_t*"},
      {"name": "settings", "c_type": "lrtc_rtp_encoding_settings_t*"}]}
  ]
}`

const e2eHandles = `{"handles": [
  {"cs_type": "RtpSender", "release": "lrtc_rtp_sender_release", "c_handle_type": "lrtc_rtp_sender_t*"}
]}`

const e2eManagedAPI = `{"schema_version": 2, "namespace": "LumenRTC", "auto_abi_surface": {"enabled": true}}`

// writeInputs stores the three documents in a temp dir and returns options
// pointing at them.
func writeInputs(t *testing.T, idl, handles, api string) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{Log: zaptest.NewLogger(t).Sugar()}
	write := func(name, content string) string {
		if content == "" {
			return ""
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	opts.IDLPath = write("abi.json", idl)
	opts.HandlesPath = write("handles.json", handles)
	opts.ManagedAPIPath = write("managed_api.json", api)
	return opts
}

func filePaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func fileByPath(t *testing.T, files []File, path string) File {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f
		}
	}
	require.Failf(t, "file not generated", "%s not in %v", path, filePaths(files))
	return File{}
}

func TestEndToEnd(t *testing.T) {
	result, err := Run(writeInputs(t, e2eIDL, e2eHandles, e2eManagedAPI))
	require.NoError(t, err)

	assert.Equal(t, []string{"Interop.Structs.g.cs", "RtpSender.Handle.g.cs", "RtpSender.Abi.g.cs"}, filePaths(result.Files))

	structs := fileByPath(t, result.Files, "Interop.Structs.g.cs").Content
	assert.Contains(t, structs, "namespace Interop;")
	assert.Contains(t, structs, "internal struct LrtcRtpEncodingSettings")
	assert.Contains(t, structs, "    public int active;")

	handle := fileByPath(t, result.Files, "RtpSender.Handle.g.cs").Content
	assert.Contains(t, handle, "namespace LumenRTC;")
	assert.Contains(t, handle, "using Interop;")
	assert.Contains(t, handle, "protected override bool ReleaseHandle()")
	assert.Contains(t, handle, "NativeMethods.lrtc_rtp_sender_release(handle);")

	surface := fileByPath(t, result.Files, "RtpSender.Abi.g.cs").Content
	assert.Contains(t, surface, "internal static int AbiSetEncodingParameters(RtpSender owner, ref LrtcRtpEncodingSettings settings)")
	assert.Contains(t, surface, "return NativeMethods.lrtc_rtp_sender_set_encoding_parameters(owner.DangerousGetHandle(), ref settings);")

	for _, f := range result.Files {
		assert.Contains(t, f.Content, "// <auto-generated />\n")
		assert.Contains(t, f.Content, "#nullable enable\n")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	reordered := `{
	  "functions": [
	    {"name": "lrtc_rtp_sender_release", "parameters": [{"name": "sender", "c_type": "lrtc_rtp_sender_t*"}]},
	    {"name": "lrtc_rtp_sender_set_encoding_parameters", "c_return_type": "int", "parameters": [
	      {"name": "sender", "c_type": "lrtc_rtp_sender_t*"},
	      {"name": "settings", "c_type": "lrtc_rtp_encoding_settings_t*"}]}
	  ],
	  "header_types": {"structs": {
	    "lrtc_rtp_encoding_settings_t": {"fields": [{"name": "active", "declaration": "int active"}]}
	  }}
	}`

	first, err := Run(writeInputs(t, e2eIDL, e2eHandles, e2eManagedAPI))
	require.NoError(t, err)
	second, err := Run(writeInputs(t, e2eIDL, e2eHandles, e2eManagedAPI))
	require.NoError(t, err)
	third, err := Run(writeInputs(t, reordered, e2eHandles, e2eManagedAPI))
	require.NoError(t, err)

	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Files, third.Files)
}

func TestYAMLInputsMatchJSON(t *testing.T) {
	yamlAPI := "schema_version: 2\nnamespace: LumenRTC\nauto_abi_surface:\n  enabled: true\n"
	fromJSON, err := Run(writeInputs(t, e2eIDL, e2eHandles, e2eManagedAPI))
	require.NoError(t, err)

	opts := writeInputs(t, e2eIDL, e2eHandles, "")
	opts.ManagedAPIPath = filepath.Join(t.TempDir(), "managed_api.yaml")
	require.NoError(t, os.WriteFile(opts.ManagedAPIPath, []byte(yamlAPI), 0o644))
	fromYAML, err := Run(opts)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Files, fromYAML.Files)
}

func TestHandleConsistencyGateWritesNothing(t *testing.T) {
	mismatched := `{"handles": [
	  {"cs_type": "RtpSender", "release": "lrtc_rtp_sender_release", "c_handle_type": "lrtc_audio_track_t*"}
	]}`
	opts := writeInputs(t, e2eIDL, mismatched, e2eManagedAPI)
	out := t.TempDir()

	result, report, err := Emit(opts, out, filepath.Join(out, DefaultManifestName))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConsistency)
	assert.Equal(t, "handles.handles[0].c_handle_type", errors.PathOf(err))
	assert.Nil(t, result)
	assert.Nil(t, report)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnknownReleaseFunction(t *testing.T) {
	unknown := `{"handles": [{"cs_type": "RtpSender", "release": "lrtc_rtp_sender_free"}]}`
	_, err := Run(writeInputs(t, e2eIDL, unknown, e2eManagedAPI))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrReference)
	assert.Equal(t, "handles.handles[0].release", errors.PathOf(err))
}

func TestSignatureDedupAcrossRun(t *testing.T) {
	idl := `{"functions": [], "header_types": {"structs": {"lrtc_peer_callbacks_t": {"fields": [
	  {"name": "on_open", "declaration": "void (*on_open)(void* user)"},
	  {"name": "on_close", "declaration": "void (*on_close)(void* user)"}
	]}}}}`
	result, err := Run(writeInputs(t, idl, "", ""))
	require.NoError(t, err)

	delegates := fileByPath(t, result.Files, "Interop.Delegates.g.cs").Content
	assert.Equal(t, 1, strings.Count(delegates, "internal delegate"))

	callbacks := fileByPath(t, result.Files, "Interop.CallbackStructs.g.cs").Content
	assert.Contains(t, callbacks, "public OnOpenCb? on_open;")
	assert.Contains(t, callbacks, "public OnOpenCb? on_close;")
}

func TestDuplicateSectionName(t *testing.T) {
	api := `{"schema_version": 2, "namespace": "LumenRTC",
	  "custom_sections": [{"section": "RtpSender.Handle", "class": "Extra"}]}`
	_, err := Run(writeInputs(t, e2eIDL, e2eHandles, api))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUniqueness)
	assert.Equal(t, "managed_api.custom_sections[0]", errors.PathOf(err))
}

func TestOutputHints(t *testing.T) {
	idl := `{
	  "target": "lumenrtc",
	  "header_types": {"structs": {
	    "lrtc_rtp_encoding_settings_t": {"fields": [{"name": "active", "declaration": "int active"}]}
	  }},
	  "functions": [
	    {"name": "lrtc_rtp_sender_release", "parameters": [{"name": "sender", "c_type": "lrtc_rtp_sender_t*"}]}
	  ],
	  "bindings": {"interop": {"output_hints": {"pattern": "{target}/{default}", "directory": "ignored"}}}
	}`
	api := `{"schema_version": 2, "namespace": "LumenRTC",
	  "output_hints": {"directory": "Generated"},
	  "custom_sections": [{"section": "Dtmf.Helpers", "class": "DtmfHelpers", "output_hint": "Dtmf/{class}.g.cs"}]}`
	result, err := Run(writeInputs(t, idl, e2eHandles, api))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Generated/lumenrtc/Interop.Structs.g.cs",
		"Generated/lumenrtc/RtpSender.Handle.g.cs",
		"Dtmf/DtmfHelpers.g.cs",
	}, filePaths(result.Files))
}

func TestOutputHintCollision(t *testing.T) {
	api := `{"schema_version": 2, "namespace": "LumenRTC", "output_hints": {"pattern": "All.cs"}}`
	_, err := Run(writeInputs(t, e2eIDL, e2eHandles, api))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUniqueness)
}

func TestDerivedRequiredFunctions(t *testing.T) {
	api := `{"schema_version": 2, "namespace": "LumenRTC",
	  "required_native_functions": ["lrtc_rtp_sender_release"],
	  "handle_api": [{"class": "RtpSender", "methods": [
	    {"signature": "public int Apply(ref LrtcRtpEncodingSettings s)",
	     "body": "return NativeMethods.lrtc_rtp_sender_set_encoding_parameters(handle, ref s);"},
	    "// NativeMethods.lrtc_not_in_registry is ignored"
	  ]}]}`
	core, logs := observer.New(zapcore.WarnLevel)
	opts := writeInputs(t, e2eIDL, e2eHandles, api)
	opts.Log = zap.New(core).Sugar()

	result, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrtc_rtp_sender_set_encoding_parameters"}, result.DerivedRequired)
	assert.Equal(t, []string{"lrtc_rtp_sender_set_encoding_parameters"}, result.MissingRequired)

	warnings := logs.FilterMessage("Native function is called but not listed as required").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "lrtc_rtp_sender_set_encoding_parameters", warnings[0].ContextMap()["function"])
}

func TestRequiredPatternsOverride(t *testing.T) {
	api := `{"schema_version": 2, "namespace": "LumenRTC",
	  "builder": {"class": "B", "methods": ["// calls Native.lrtc_rtp_sender_release"]}}`
	opts := writeInputs(t, e2eIDL, e2eHandles, api)
	opts.RequiredPatterns = []string{`Native\.(lrtc_\w+)`}

	result, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrtc_rtp_sender_release"}, result.DerivedRequired)

	opts.RequiredPatterns = []string{`no_group`}
	_, err = Run(opts)
	assert.Error(t, err)
}

func TestNativeClassOverride(t *testing.T) {
	opts := writeInputs(t, e2eIDL, e2eHandles, e2eManagedAPI)
	opts.NativeClass = "LumenNative"
	result, err := Run(opts)
	require.NoError(t, err)
	assert.Contains(t, fileByPath(t, result.Files, "RtpSender.Handle.g.cs").Content, "LumenNative.lrtc_rtp_sender_release(handle);")
}

func TestLoadRequiresIDL(t *testing.T) {
	_, err := Load(Options{})
	assert.Error(t, err)

	_, err = Load(Options{IDLPath: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}
