package pipeline

import "testing"

func TestInboundIsMedia(t *testing.T) {
	cases := []struct {
		name string
		ev   InboundEvent
		want bool
	}{
		{name: "marker and url", ev: InboundEvent{Body: "_event_media_", MediaURL: "https://x/f"}, want: true},
		{name: "marker without url", ev: InboundEvent{Body: "_event_media_"}, want: false},
		{name: "url without marker", ev: InboundEvent{Body: "hola", MediaURL: "https://x/f"}, want: false},
		{name: "plain text", ev: InboundEvent{Body: "hola"}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ev.IsMedia(); got != tc.want {
				t.Fatalf("IsMedia() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	if !isRemote("https://example.com/file.png") || !isRemote("http://example.com/f") {
		t.Error("expected http(s) URLs to be remote")
	}
	if isRemote("/var/media/file.png") || isRemote("media/file.png") {
		t.Error("expected local paths not to be remote")
	}
}
