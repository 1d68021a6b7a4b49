package utils

import "testing"

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"text": "<b>1,000 KRW</b> & more"})
	if err != nil {
		t.Fatalf("MarshalNoEscape: %v", err)
	}
	want := `{"text":"<b>1,000 KRW</b> & more"}`
	if string(out) != want {
		t.Errorf("MarshalNoEscape = %s, want %s", out, want)
	}
}

func TestMarshalIndentNoEscape(t *testing.T) {
	out, err := MarshalIndentNoEscape(map[string]int{"days": 3})
	if err != nil {
		t.Fatalf("MarshalIndentNoEscape: %v", err)
	}
	want := "{\n  \"days\": 3\n}"
	if string(out) != want {
		t.Errorf("MarshalIndentNoEscape = %q, want %q", out, want)
	}
}
