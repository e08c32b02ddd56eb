package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascalCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"set_encoding_parameters", "SetEncodingParameters"},
		{"on-track", "OnTrack"},
		{"__leading", "Leading"},
		{"alreadyPascal", "AlreadyPascal"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PascalCase(tt.in), tt.in)
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "LrtcRtpSender", TypeName("lrtc_rtp_sender_t", true))
	assert.Equal(t, "LrtcRtpSenderT", TypeName("lrtc_rtp_sender_t", false))
	assert.Equal(t, "LrtcIceCandidateCb", TypeName("lrtc_ice_candidate_cb", false))
}

func TestMemberName(t *testing.T) {
	assert.Equal(t, "Red", MemberName("RED"))
	assert.Equal(t, "PeerConnected", MemberName("PEER_CONNECTED"))
	assert.Equal(t, "_1080p", MemberName("1080P"))
	assert.Equal(t, "", MemberName("__"))
}

func TestSectionForms(t *testing.T) {
	tests := []struct {
		in, snake, kebab, compact string
	}{
		{"RtpSender.Abi", "rtp_sender_abi", "rtp-sender-abi", "RtpSenderAbi"},
		{"Interop.Structs", "interop_structs", "interop-structs", "InteropStructs"},
		{"HTTPSConnection", "https_connection", "https-connection", "HTTPSConnection"},
		{"peer_connection", "peer_connection", "peer-connection", "PeerConnection"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, SnakeCase(tt.in))
			assert.Equal(t, tt.kebab, KebabCase(tt.in))
			assert.Equal(t, tt.compact, CompactPascal(tt.in))
		})
	}
}

func TestUnderscorePrefix(t *testing.T) {
	assert.Equal(t, "COLOR_", UnderscorePrefix([]string{"COLOR_RED", "COLOR_GREEN", "COLOR_BLUE"}))
	// LCP "LRTC_MEDIA_TYPE_" is kept whole because it already ends on '_'
	assert.Equal(t, "LRTC_MEDIA_TYPE_", UnderscorePrefix([]string{"LRTC_MEDIA_TYPE_AUDIO", "LRTC_MEDIA_TYPE_VIDEO"}))
	// shared letters past the last '_' are given back
	assert.Equal(t, "STATE_", UnderscorePrefix([]string{"STATE_NEW", "STATE_NONE"}))
	assert.Equal(t, "", UnderscorePrefix([]string{"RED", "READY"}))
	assert.Equal(t, "", UnderscorePrefix(nil))
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "RED", StripPrefix("COLOR_RED", "COLOR_"))
	assert.Equal(t, "COLOR_", StripPrefix("COLOR_", "COLOR_"))
	assert.Equal(t, "OTHER", StripPrefix("OTHER", "COLOR_"))
}

func TestPascalPrefix(t *testing.T) {
	assert.Equal(t, "Lrtc", PascalPrefix([]string{"LrtcIceCandidateCb", "LrtcIdleCb"}))
	assert.Equal(t, "LrtcIce", PascalPrefix([]string{"LrtcIceCb", "LrtcIceGatheringCb"}))
	assert.Equal(t, "", PascalPrefix([]string{"FooCb", "BarCb"}))
}

func TestNameSetClaim(t *testing.T) {
	s := NewNameSet("Dispose")

	assert.Equal(t, "Foo", s.Claim("Foo"))
	assert.Equal(t, "Foo2", s.Claim("Foo"))
	assert.Equal(t, "Foo3", s.Claim("Foo"))
	assert.Equal(t, "Dispose2", s.Claim("Dispose"))
	assert.True(t, s.Has("Foo3"))
	assert.False(t, s.Has("Bar"))
}
