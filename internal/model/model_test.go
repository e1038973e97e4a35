package model

import "testing"

func TestPlatform_Valid(t *testing.T) {
	cases := []struct {
		platform Platform
		want     bool
	}{
		{PlatformInstagram, true},
		{PlatformTwitter, true},
		{Platform("tiktok"), false},
		{Platform(""), false},
	}
	for _, c := range cases {
		if got := c.platform.Valid(); got != c.want {
			t.Errorf("Platform(%q).Valid() = %v, want %v", c.platform, got, c.want)
		}
	}
}

func TestReel_IsReel(t *testing.T) {
	cases := []struct {
		name string
		reel Reel
		want bool
	}{
		{"neither flag set", Reel{}, false},
		{"is video", Reel{IsVideo: true}, true},
		{"has video url", Reel{HasVideoURL: true}, true},
		{"both flags set", Reel{IsVideo: true, HasVideoURL: true}, true},
	}
	for _, c := range cases {
		if got := c.reel.IsReel(); got != c.want {
			t.Errorf("%s: IsReel() = %v, want %v", c.name, got, c.want)
		}
	}
}
