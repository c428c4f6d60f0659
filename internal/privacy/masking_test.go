package privacy

import (
	"testing"
)

func TestMaskSnowflake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"112233445566778899", "**************8899"},
		{"12345", "*2345"},

		// Edge cases
		{"", ""},
		{"1234", "****"},
		{"1", "*"},
	}

	for _, test := range tests {
		result := MaskSnowflake(test.input)
		if result != test.expected {
			t.Errorf("MaskSnowflake(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestMaskUserID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user123456", "******3456"},
		{"abc", "***"},
		{"", ""},
	}

	for _, test := range tests {
		result := MaskUserID(test.input)
		if result != test.expected {
			t.Errorf("MaskUserID(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestMaskChannelID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"998877665544", "********5544"},
		{"ic-events", "ic-events"},
		{"supernatural-events", "supernatural-events"},
		{"", ""},
	}

	for _, test := range tests {
		result := MaskChannelID(test.input)
		if result != test.expected {
			t.Errorf("MaskChannelID(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MTIzNDU2.abc.def", "MTI***"},
		{"short", "*****"},
		{"", ""},
	}

	for _, test := range tests {
		result := MaskToken(test.input)
		if result != test.expected {
			t.Errorf("MaskToken(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://cdn.example.com/a/b/c.png?sig=secret", "https://cdn.example.com/a/b/c.png"},
		{"http://example.com/img.gif", "http://example.com/img.gif"},
		{
			"https://cdn.example.com/attachments/0123456789/0123456789/picture.png",
			"https://cdn.example.com/.../picture.png",
		},
		{"not a url", "not a url"},
		{"", ""},
	}

	for _, test := range tests {
		result := MaskURL(test.input)
		if result != test.expected {
			t.Errorf("MaskURL(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	input := map[string]interface{}{
		"user_id":    "112233445566",
		"channel_id": "998877665544",
		"message_id": "555566667777",
		"token":      "MTIzNDU2.abc.def",
		"url":        "https://example.com/x.png?key=1",
		"count":      3,
		"command":    "relay-public",
	}

	result := MaskSensitiveFields(input)

	expected := map[string]interface{}{
		"user_id":    "********5566",
		"channel_id": "********5544",
		"message_id": "********7777",
		"token":      "MTI***",
		"url":        "https://example.com/x.png",
		"count":      3,
		"command":    "relay-public",
	}
	for k, want := range expected {
		if result[k] != want {
			t.Errorf("MaskSensitiveFields[%q] = %v, expected %v", k, result[k], want)
		}
	}

	if MaskSensitiveFields(nil) != nil {
		t.Error("MaskSensitiveFields(nil) should return nil")
	}
}
