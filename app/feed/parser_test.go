package feed

import (
	"errors"
	"testing"
)

const nitterRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <atom:link href="https://nitter.example/bob/rss" rel="self" type="application/rss+xml" />
    <title>Bob / @bob</title>
    <link>https://nitter.example/bob</link>
    <description>Twitter feed for: @bob. Generated by nitter.example</description>
    <language>en-us</language>
    <ttl>40</ttl>
    <image>
      <title>Bob / @bob</title>
      <link>https://nitter.example/bob</link>
      <url>https://nitter.example/pic/pbs.twimg.com%2Fprofile_images%2F123%2Favatar_400x400.jpg</url>
      <width>128</width>
      <height>128</height>
    </image>
    <item>
      <title>hello world</title>
      <dc:creator>@bob</dc:creator>
      <description><![CDATA[<p>hello <a href="https://nitter.example/alice">@alice</a></p><img src="https://nitter.example/pic/media%2FF1abc.jpg" style="max-width:250px;" />]]></description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <guid>https://nitter.example/bob/status/12345#m</guid>
      <link>https://nitter.example/bob/status/12345#m</link>
    </item>
    <item>
      <title>RT by @bob: something</title>
      <dc:creator>@carol</dc:creator>
      <description><![CDATA[<p>something</p>]]></description>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
      <guid>https://nitter.example/carol/status/67890#m</guid>
      <link>https://nitter.example/carol/status/67890#m</link>
    </item>
    <item>
      <title>no author</title>
      <guid>https://nitter.example/bob/status/11111#m</guid>
    </item>
  </channel>
</rss>`

func TestParseNitterRSS(t *testing.T) {
	parser := NewParser("https://nitter.example/")
	doc, err := parser.Run([]byte(nitterRSS))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if doc.Title != "Bob / @bob" {
		t.Errorf("Expected title 'Bob / @bob', got: %s", doc.Title)
	}
	if doc.ImageURL != "https://pbs.twimg.com/profile_images/123/avatar_400x400.jpg" {
		t.Errorf("Expected upstream avatar URL, got: %s", doc.ImageURL)
	}

	if len(doc.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got: %d", len(doc.Entries))
	}

	first := doc.Entries[0]
	if first.GUID != "https://nitter.example/bob/status/12345#m" {
		t.Errorf("Expected GUID of first entry, got: %s", first.GUID)
	}
	if first.Published != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected raw published string, got: %s", first.Published)
	}
	if first.Author != "@bob" {
		t.Errorf("Expected author '@bob', got: %s", first.Author)
	}
	if first.Description == "" {
		t.Error("Expected description to be populated")
	}

	if doc.Entries[1].Author != "@carol" {
		t.Errorf("Expected author '@carol', got: %s", doc.Entries[1].Author)
	}

	last := doc.Entries[2]
	if last.Author != "" || last.Published != "" || last.Description != "" {
		t.Errorf("Expected empty optional fields, got: %+v", last)
	}
}

func TestParseKeepsForeignAvatar(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>x</title>
<image><url>https://cdn.example/avatar.png</url></image>
</channel></rss>`

	doc, err := NewParser("https://nitter.example").Run([]byte(rss))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if doc.ImageURL != "https://cdn.example/avatar.png" {
		t.Errorf("Expected avatar URL unchanged, got: %s", doc.ImageURL)
	}
	if len(doc.Entries) != 0 {
		t.Errorf("Expected no entries, got: %d", len(doc.Entries))
	}
}

func TestParseAuthorElement(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>x</title>
<item><guid>a/1</guid><author>dave@example.com (Dave)</author></item>
</channel></rss>`

	doc, err := NewParser("https://nitter.example").Run([]byte(rss))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if doc.Entries[0].Author != "Dave" {
		t.Errorf("Expected author 'Dave', got: %s", doc.Entries[0].Author)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser("https://nitter.example")
	_, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Fatal("Expected error for invalid XML")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("Expected ErrParse, got: %v", err)
	}
}
