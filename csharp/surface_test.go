package csharp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/handles"
	"github.com/teranos/interopgen/managedapi"
)

func testHandles() []handles.Handle {
	return []handles.Handle{
		{Namespace: "LumenRTC", CsType: "RtpSender", Release: "lrtc_rtp_sender_release", Access: "internal", Path: "handles.handles[0]"},
		{Namespace: "LumenRTC", CsType: "Track", Release: "lrtc_track_release", Access: "public",
			CHandleType: "lrtc_track_t*", Path: "handles.handles[1]"},
	}
}

func bindTestHandles(t *testing.T, m *abi.Model) []BoundHandle {
	t.Helper()
	hs, err := BindHandles(m, testHandles(), "LumenRTC")
	require.NoError(t, err)
	return hs
}

func defaultSurface() managedapi.AutoSurface {
	return managedapi.AutoSurface{
		Enabled:       true,
		MethodPrefix:  managedapi.DefaultMethodPrefix,
		SectionSuffix: managedapi.DefaultSectionSuffix,
		Facade: managedapi.Facade{
			Enabled:       true,
			Access:        managedapi.DefaultAccess,
			ClassSuffix:   managedapi.DefaultFacadeClassSuffix,
			SectionSuffix: managedapi.DefaultFacadeSectionSuffix,
		},
	}
}

func TestBindHandles(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	require.Len(t, hs, 2)
	assert.Equal(t, "lrtc_rtp_sender_t", hs[0].Native.Base)
	assert.Equal(t, 1, hs[0].Native.Depth)
	assert.Equal(t, "LumenRTC", hs[1].Namespace)

	bare := []handles.Handle{{CsType: "Track", Release: "lrtc_track_release", Access: "internal", Path: "handles.handles[0]"}}
	bound, err := BindHandles(m, bare, "Fallback.Ns")
	require.NoError(t, err)
	assert.Equal(t, "Fallback.Ns", bound[0].Namespace)
}

func TestBindHandlesErrors(t *testing.T) {
	src := `{"functions": [
	  {"name": "x_release", "parameters": [{"name": "x", "c_type": "x_t*"}]},
	  {"name": "x_noop", "parameters": []}
	]}`
	m, err := abi.ParseJSON([]byte(src), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		handle handles.Handle
		kind   error
		path   string
	}{
		{"unknown release", handles.Handle{CsType: "X", Release: "x_free"}, errors.ErrReference, "handles.handles[0].release"},
		{"release without parameter", handles.Handle{CsType: "X", Release: "x_noop"}, errors.ErrConsistency, "handles.handles[0].release"},
		{"handle type mismatch", handles.Handle{CsType: "X", Release: "x_release", CHandleType: "y_t*"}, errors.ErrConsistency, "handles.handles[0].c_handle_type"},
		{"pointer depth mismatch", handles.Handle{CsType: "X", Release: "x_release", CHandleType: "x_t**"}, errors.ErrConsistency, "handles.handles[0].c_handle_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.handle.Path = "handles.handles[0]"
			_, err := BindHandles(m, []handles.Handle{tt.handle}, "N")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.path, errors.PathOf(err))
		})
	}

	// qualifiers and spacing do not matter
	ok := handles.Handle{CsType: "X", Release: "x_release", CHandleType: "const x_t *", Path: "handles.handles[0]"}
	_, err = BindHandles(m, []handles.Handle{ok}, "N")
	assert.NoError(t, err)
}

func TestHandleSection(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)

	s := HandleSection(m, hs[0])
	assert.Equal(t, "RtpSender.Handle", s.Name)
	assert.Equal(t, "LumenRTC", s.Namespace)
	assert.Equal(t, []string{"System", "System.Runtime.InteropServices", "LumenRTC.Interop"}, s.Usings)
	assert.Equal(t, []string{
		"internal partial class RtpSender",
		"{",
		"    protected override bool ReleaseHandle()",
		"    {",
		"        NativeMethods.lrtc_rtp_sender_release(handle);",
		"        return true;",
		"    }",
		"}",
	}, s.Lines)
}

func TestHandleSectionFallback(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	h := hs[1]
	h.Fallback = true

	assert.Equal(t, []string{
		"public sealed partial class Track : SafeHandle",
		"{",
		"    public Track()",
		"        : base(IntPtr.Zero, ownsHandle: true)",
		"    {",
		"    }",
		"",
		"    internal Track(IntPtr handle, bool ownsHandle = true)",
		"        : base(IntPtr.Zero, ownsHandle)",
		"    {",
		"        SetHandle(handle);",
		"    }",
		"",
		"    public override bool IsInvalid => handle == IntPtr.Zero;",
		"",
		"    protected override bool ReleaseHandle()",
		"    {",
		"        NativeMethods.lrtc_track_release(handle);",
		"        return true;",
		"    }",
		"}",
	}, HandleSection(m, h).Lines)
}

func TestBuildSurface(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	surfaces := BuildSurface(m, hs, defaultSurface())
	require.Len(t, surfaces, 2)

	sender := surfaces[0]
	var names []string
	for _, method := range sender.Methods {
		names = append(names, method.Name)
	}
	// release, deprecated and variadic functions are left out
	assert.Equal(t, []string{"AbiSetEncodingParameters", "AbiGetId", "AbiSetTrack", "AbiStop"}, names)

	assert.Equal(t, SurfaceMethod{
		Name:     "AbiSetEncodingParameters",
		Function: "lrtc_rtp_sender_set_encoding_parameters",
		Return:   "int",
		Params:   []SurfaceParam{{Name: "settings", Type: "ref LrtcRtpEncodingSettings", Arg: "ref settings"}},
	}, sender.Methods[0])
	assert.Equal(t, []SurfaceParam{
		{Name: "buffer", Type: "IntPtr", Arg: "buffer"},
		{Name: "buffer_len", Type: "nuint", Arg: "buffer_len"},
	}, sender.Methods[1].Params)
	assert.Equal(t, []SurfaceParam{
		{Name: "track", Type: "Track", Arg: "track.DangerousGetHandle()", Wrapper: true},
	}, sender.Methods[2].Params)

	track := surfaces[1]
	require.Len(t, track.Methods, 1)
	assert.Equal(t, "AbiEnabled", track.Methods[0].Name)
	assert.Equal(t, "bool", track.Methods[0].Return)
}

func TestBuildSurfaceIncludeDeprecated(t *testing.T) {
	m := parseTestIDL(t)
	opts := defaultSurface()
	opts.IncludeDeprecated = true
	surfaces := BuildSurface(m, bindTestHandles(t, m), opts)
	assert.Len(t, surfaces[0].Methods, 5)
	assert.Equal(t, "AbiLegacy", surfaces[0].Methods[4].Name)
}

func TestSurfaceMethodName(t *testing.T) {
	assert.Equal(t, "SetEncodingParameters", SurfaceMethodName("lrtc_", "rtp_sender", "lrtc_rtp_sender_set_encoding_parameters"))
	assert.Equal(t, "PeerConnect", SurfaceMethodName("lrtc_", "rtp_sender", "lrtc_peer_connect"))
	assert.Equal(t, "RtpSender", SurfaceMethodName("lrtc_", "rtp_sender", "lrtc_rtp_sender"))
	assert.Equal(t, "rtp_sender", ModuleStem("lrtc_", "lrtc_rtp_sender_t"))
	assert.Equal(t, "widget", ModuleStem("", "widget"))
}

func TestBuildSurfaceNameCollisions(t *testing.T) {
	src := `{"functions": [
	  {"name": "m_x_release", "parameters": [{"name": "x", "c_type": "m_x_t*"}]},
	  {"name": "m_x_foo", "parameters": [{"name": "x", "c_type": "m_x_t*"}]},
	  {"name": "m_foo", "parameters": [{"name": "x", "c_type": "m_x_t*"}]},
	  {"name": "m_x__foo", "parameters": [{"name": "x", "c_type": "m_x_t*"}]},
	  {"name": "m_x_close", "parameters": [{"name": "x", "c_type": "m_x_t*"}, {"name": "owner", "c_type": "int"}, {"name": "event", "c_type": "int"}]}
	]}`
	m, err := abi.ParseJSON([]byte(src), nil)
	require.NoError(t, err)
	hs, err := BindHandles(m, []handles.Handle{{CsType: "X", Release: "m_x_release", Access: "internal"}}, "N")
	require.NoError(t, err)

	opts := defaultSurface()
	opts.MethodPrefix = ""
	surfaces := BuildSurface(m, hs, opts)
	require.Len(t, surfaces, 1)

	var names []string
	for _, method := range surfaces[0].Methods {
		names = append(names, method.Name)
	}
	assert.Equal(t, []string{"Foo", "Foo2", "Foo3", "Close2"}, names)

	closeParams := surfaces[0].Methods[3].Params
	assert.Equal(t, "owner2", closeParams[0].Name)
	assert.Equal(t, "@event", closeParams[1].Name)
}

func TestSurfaceSection(t *testing.T) {
	m := parseTestIDL(t)
	opts := defaultSurface()
	surfaces := BuildSurface(m, bindTestHandles(t, m), opts)

	s, ok := SurfaceSection(m, surfaces[0], opts)
	require.True(t, ok)
	assert.Equal(t, "RtpSender.Abi", s.Name)
	assert.Equal(t, "LumenRTC", s.Namespace)
	assert.Equal(t, []string{
		"internal partial class RtpSender",
		"{",
		"    internal static int AbiSetEncodingParameters(RtpSender owner, ref LrtcRtpEncodingSettings settings)",
		"    {",
		"        ArgumentNullException.ThrowIfNull(owner);",
		"        return NativeMethods.lrtc_rtp_sender_set_encoding_parameters(owner.DangerousGetHandle(), ref settings);",
		"    }",
		"",
		"    internal static int AbiGetId(RtpSender owner, IntPtr buffer, nuint buffer_len)",
		"    {",
		"        ArgumentNullException.ThrowIfNull(owner);",
		"        return NativeMethods.lrtc_rtp_sender_get_id(owner.DangerousGetHandle(), buffer, buffer_len);",
		"    }",
		"",
		"    internal static void AbiSetTrack(RtpSender owner, Track track)",
		"    {",
		"        ArgumentNullException.ThrowIfNull(owner);",
		"        ArgumentNullException.ThrowIfNull(track);",
		"        NativeMethods.lrtc_rtp_sender_set_track(owner.DangerousGetHandle(), track.DangerousGetHandle());",
		"    }",
		"",
		"    internal static void AbiStop(RtpSender owner)",
		"    {",
		"        ArgumentNullException.ThrowIfNull(owner);",
		"        NativeMethods.lrtc_rtp_sender_stop(owner.DangerousGetHandle());",
		"    }",
		"}",
	}, s.Lines)

	_, ok = SurfaceSection(m, Surface{Handle: surfaces[0].Handle}, opts)
	assert.False(t, ok)
}

func TestFacadeFilter(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)

	strict := NewFacadeFilter(hs, false)
	assert.True(t, strict.Allows("int"))
	assert.True(t, strict.Allows("nuint"))
	assert.True(t, strict.Allows("void"))
	assert.True(t, strict.Allows("Track"))
	assert.True(t, strict.Allows("LumenRTC.Track"))
	assert.True(t, strict.Allows("global::LumenRTC.Track?"))
	assert.False(t, strict.Allows("IntPtr"))
	assert.False(t, strict.Allows("System.UIntPtr"))
	assert.False(t, strict.Allows("ref LrtcRtpEncodingSettings"))
	assert.False(t, strict.Allows("LrtcIceCandidateCb"))

	loose := NewFacadeFilter(hs, true)
	assert.True(t, loose.Allows("IntPtr"))
	assert.True(t, loose.Allows("UIntPtr"))
	assert.False(t, loose.Allows("ref LrtcRtpEncodingSettings"))
}

func TestBuildFacade(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	opts := defaultSurface()
	surfaces := BuildSurface(m, hs, opts)

	names := func(f Facade) []string {
		var out []string
		for _, method := range f.Methods {
			out = append(out, method.Name)
		}
		return out
	}

	facades := BuildFacade(surfaces, hs, opts)
	require.Len(t, facades, 2)
	assert.Equal(t, []string{"SetTrack", "Stop"}, names(facades[0]))
	assert.Equal(t, []string{"Enabled"}, names(facades[1]))

	opts.Facade.AllowIntPtr = true
	opts.Facade.MethodPrefix = "Try"
	facades = BuildFacade(surfaces, hs, opts)
	assert.Equal(t, []string{"TryGetId", "TrySetTrack", "TryStop"}, names(facades[0]))
}

func TestFacadeSection(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	opts := defaultSurface()
	facades := BuildFacade(BuildSurface(m, hs, opts), hs, opts)

	s, ok := FacadeSection(m, facades[0], opts)
	require.True(t, ok)
	assert.Equal(t, "RtpSender.Facade", s.Name)
	assert.Equal(t, "RtpSenderExtensions", s.Class)
	assert.Equal(t, []string{
		"internal static partial class RtpSenderExtensions",
		"{",
		"    internal static void SetTrack(this RtpSender owner, Track track)",
		"    {",
		"        RtpSender.AbiSetTrack(owner, track);",
		"    }",
		"",
		"    internal static void Stop(this RtpSender owner)",
		"    {",
		"        RtpSender.AbiStop(owner);",
		"    }",
		"}",
	}, s.Lines)

	_, ok = FacadeSection(m, Facade{Handle: hs[0]}, opts)
	assert.False(t, ok)
}

func TestFacadeAccessFollowsWrappers(t *testing.T) {
	m := parseTestIDL(t)
	hs := bindTestHandles(t, m)
	opts := defaultSurface()
	facades := BuildFacade(BuildSurface(m, hs, opts), hs, opts)
	require.Len(t, facades, 2)

	// RtpSender is internal, so its public facade is capped.
	assert.Equal(t, "internal", facades[0].Access)
	for _, method := range facades[0].Methods {
		assert.Equal(t, "internal", method.Access, method.Name)
	}

	// Track is public and keeps the requested access.
	assert.Equal(t, "public", facades[1].Access)
	s, ok := FacadeSection(m, facades[1], opts)
	require.True(t, ok)
	assert.Equal(t, "public static partial class TrackExtensions", s.Lines[0])
	assert.True(t, strings.HasPrefix(s.Lines[2], "    public static "), s.Lines[2])

	// a public facade method exposing an internal wrapper is capped too
	filter := NewFacadeFilter(hs, false)
	takesSender := SurfaceMethod{Name: "AbiAttach", Return: "void", Params: []SurfaceParam{{Name: "sender", Type: "RtpSender"}}}
	assert.Equal(t, "internal", filter.MethodAccess("public", takesSender))
	takesTrack := SurfaceMethod{Name: "AbiAttach", Return: "LumenRTC.Track", Params: nil}
	assert.Equal(t, "public", filter.MethodAccess("public", takesTrack))
}

func TestCapAccess(t *testing.T) {
	tests := []struct {
		requested, limit, want string
	}{
		{"public", "public", "public"},
		{"public", "internal", "internal"},
		{"internal", "public", "internal"},
		{"internal", "internal", "internal"},
		{"public", "protected internal", "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.limit, func(t *testing.T) {
			assert.Equal(t, tt.want, CapAccess(tt.requested, tt.limit))
		})
	}
}
