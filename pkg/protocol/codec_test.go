package protocol

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain", "/home/user/file.txt", "/home/user/file.txt"},
		{"newline escape", `a\nb`, "a\nb"},
		{"backslash escape", `C:\\dir`, `C:\dir`},
		{"escaped backslash before n", `\\n`, `\n`},
		{"escaped backslash then newline", `\\\n`, "\\\n"},
		{"unknown escape kept", `\t`, `\t`},
		{"sentinel is not an escape", `\E`, `\E`},
		{"trailing lone backslash", `abc\`, `abc\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.raw); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"plain", "text/html", "text/html"},
		{"newline", "line1\nline2", `line1\nline2`},
		{"backslash", `a\b`, `a\\b`},
		{"literal backslash n", `\n`, `\\n`},
		{"status-like text", `\1`, `\\1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.text); got != tt.want {
				t.Errorf("Encode(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"simple",
		"multi\nline\ntitle",
		`back\slash`,
		`\n literal`,
		"\\\n\\\\\n",
		`\E`,
		"ünïcödé\n路径",
	}
	for _, text := range texts {
		encoded := Encode(text)
		for _, c := range encoded {
			if c == '\n' {
				t.Errorf("Encode(%q) = %q contains a raw newline", text, encoded)
			}
		}
		if got := Decode(encoded); got != text {
			t.Errorf("Decode(Encode(%q)) = %q", text, got)
		}
	}
}

func TestEncodeDecodeStable(t *testing.T) {
	wellFormed := []string{`a\nb`, `c\\d`, `\\\\`, `x\n\\y`}
	for _, raw := range wellFormed {
		if got := Encode(Decode(raw)); got != raw {
			t.Errorf("Encode(Decode(%q)) = %q", raw, got)
		}
	}
}

func TestStatusNeverCollidesWithEncodedData(t *testing.T) {
	for _, text := range []string{StatusOK, StatusFailed, `\`, "1", "0"} {
		encoded := Encode(text)
		if encoded == StatusOK || encoded == StatusFailed {
			t.Errorf("Encode(%q) = %q collides with a status line", text, encoded)
		}
	}
	if Status(true) != StatusOK || Status(false) != StatusFailed {
		t.Errorf("Status() = %q/%q", Status(true), Status(false))
	}
}
