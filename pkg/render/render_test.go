package render

import "testing"

func TestRenderers(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantHex  string
		wantText string
	}{
		{name: "mixed", payload: []byte{0x41, 0x00, 0xff}, wantHex: "4100ff", wantText: "A0x000xff"},
		{name: "empty", payload: nil, wantHex: "", wantText: ""},
		{name: "space and tilde", payload: []byte(" ~"), wantHex: "207e", wantText: " ~"},
		{name: "control and del", payload: []byte{'\n', 0x7f, 0x1f}, wantHex: "0a7f1f", wantText: "0x0a0x7f0x1f"},
		{name: "high bit", payload: []byte{0x80, 'z'}, wantHex: "807a", wantText: "0x80z"},
	}

	var hex, text Renderer = Hex{}, Text{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hex.Render(tt.payload); got != tt.wantHex {
				t.Errorf("Hex.Render() = %q, want %q", got, tt.wantHex)
			}
			if got := text.Render(tt.payload); got != tt.wantText {
				t.Errorf("Text.Render() = %q, want %q", got, tt.wantText)
			}
		})
	}
}
