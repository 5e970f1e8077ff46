package slug

import "testing"

func TestSlugifyBasic(t *testing.T) {
	cases := map[string]string{
		"Ventricular Fibrillation": "ventricular-fibrillation",
		"VF":                       "vf",
		"  chest pain  ":           "chest-pain",
		"CPAP/BiPAP":               "cpap-bipap",
		"12-lead ECG":              "12-lead-ecg",
		"vf/vt":                    "vf-vt",
		"--already--slugged--":     "already-slugged",
	}

	for label, want := range cases {
		if got := Slugify(label); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	labels := []string{"Myocardial Infarction", "!!!", "vf"}
	for _, label := range labels {
		first := Slugify(label)
		for i := 0; i < 5; i++ {
			if got := Slugify(label); got != first {
				t.Fatalf("Slugify(%q) not stable: got %q then %q", label, first, got)
			}
		}
	}
}

func TestSlugifyFallback(t *testing.T) {
	// No alphanumeric content: key must still be non-empty and stable.
	key := Slugify("???")
	if key == "" {
		t.Fatal("expected non-empty fallback key")
	}
	if len(key) != 8 {
		t.Errorf("fallback key length = %d, want 8", len(key))
	}
	if key != Slugify("???") {
		t.Error("fallback key not stable across calls")
	}
	if key == Slugify("!!!") {
		t.Error("different labels produced the same fallback key")
	}
}

func TestSlugifyStableOnOwnOutput(t *testing.T) {
	key := Slugify("Acute Coronary Syndrome")
	if Slugify(key) != key {
		t.Errorf("Slugify(%q) = %q, want it unchanged", key, Slugify(key))
	}
}
