package wayback

import "testing"

func TestParseCDXLine(t *testing.T) {
	line := "gov,nasa)/ 20200304050607 https://nasa.gov:80/ text/html 200 ABCD1234 1024"
	rec, err := parseCDXLine("nasa.gov", line)
	if err != nil {
		t.Fatalf("parseCDXLine: %v", err)
	}

	if rec.Key != "gov,nasa)/" {
		t.Fatalf("Key = %q", rec.Key)
	}
	if rec.URL != "https://nasa.gov/" {
		t.Fatalf("URL = %q, want redundant :80 stripped", rec.URL)
	}
	if rec.StatusCode == nil || *rec.StatusCode != 200 {
		t.Fatalf("StatusCode = %v", rec.StatusCode)
	}
	if rec.Length == nil || *rec.Length != 1024 {
		t.Fatalf("Length = %v", rec.Length)
	}
	if rec.Digest != "ABCD1234" {
		t.Fatalf("Digest = %q", rec.Digest)
	}
}

func TestParseCDXLineToleratesDashSentinels(t *testing.T) {
	line := "gov,nasa)/ 20200304050607 https://nasa.gov/ warc/revisit - - -"
	rec, err := parseCDXLine("nasa.gov", line)
	if err != nil {
		t.Fatalf("parseCDXLine: %v", err)
	}
	if rec.StatusCode != nil {
		t.Fatalf("StatusCode = %v, want nil", rec.StatusCode)
	}
	if rec.Length != nil {
		t.Fatalf("Length = %v, want nil", rec.Length)
	}
	if rec.Digest != "" {
		t.Fatalf("Digest = %q, want empty", rec.Digest)
	}
	if !rec.IsRevisit() {
		t.Fatal("IsRevisit() = false, want true")
	}
}

func TestParseCDXLineRejectsTooFewFields(t *testing.T) {
	_, err := parseCDXLine("nasa.gov", "gov,nasa)/ 20200304050607 https://nasa.gov/")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*UnexpectedResponseFormatError); !ok {
		t.Fatalf("error type = %T, want *UnexpectedResponseFormatError", err)
	}
}

func TestParseCDXLineDetectsRobotsBlock(t *testing.T) {
	_, err := parseCDXLine("nasa.gov", "RobotAccessControlException: blocked")
	if _, ok := err.(*BlockedByRobotsError); !ok {
		t.Fatalf("error type = %T, want *BlockedByRobotsError", err)
	}
}

func TestCDXRecordFingerprintDistinguishesDigest(t *testing.T) {
	a, err := parseCDXLine("x", "k 20200304050607 https://x/ text/html 200 AAAA 1")
	if err != nil {
		t.Fatalf("parseCDXLine: %v", err)
	}
	b, err := parseCDXLine("x", "k 20200304050607 https://x/ text/html 200 BBBB 1")
	if err != nil {
		t.Fatalf("parseCDXLine: %v", err)
	}
	if a.fingerprint() == b.fingerprint() {
		t.Fatal("records with different digests should not share a fingerprint")
	}
}

func TestCDXRecordStatusCodeOrZero(t *testing.T) {
	rec, err := parseCDXLine("x", "k 20200304050607 https://x/ warc/revisit - - -")
	if err != nil {
		t.Fatalf("parseCDXLine: %v", err)
	}
	if rec.StatusCodeOrZero() != 0 {
		t.Fatalf("StatusCodeOrZero() = %d, want 0", rec.StatusCodeOrZero())
	}
}
