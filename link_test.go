package wayback

import "testing"

func TestParseLinkHeaderExtractsKnownRelations(t *testing.T) {
	value := `<https://web.archive.org/web/20200101000000/https://example.com/>; rel="original", ` +
		`<https://web.archive.org/web/timemap/link/https://example.com/>; rel="timemap"; type="application/link-format", ` +
		`<https://web.archive.org/web/20200102000000/https://example.com/>; rel="next memento"; datetime="Thu, 02 Jan 2020 00:00:00 GMT"`

	links := parseLinkHeader(value)

	original, ok := links["original"]
	if !ok || original.URL != "https://web.archive.org/web/20200101000000/https://example.com/" {
		t.Fatalf("original link = %+v, ok=%v", original, ok)
	}

	next, ok := links["next memento"]
	if !ok {
		t.Fatal("expected next memento relation")
	}
	if !next.HasDatetime {
		t.Fatal("expected next memento to carry a parsed datetime")
	}
	if next.Datetime.Year() != 2020 || next.Datetime.Month() != 1 || next.Datetime.Day() != 2 {
		t.Fatalf("next.Datetime = %v", next.Datetime)
	}
}

func TestParseLinkHeaderIgnoresUnknownRelations(t *testing.T) {
	links := parseLinkHeader(`<https://example.com/related>; rel="related"`)
	if len(links) != 0 {
		t.Fatalf("links = %v, want none", links)
	}
}

func TestParseLinkHeaderEmptyValue(t *testing.T) {
	links := parseLinkHeader("")
	if len(links) != 0 {
		t.Fatalf("links = %v, want none", links)
	}
}
