package filter

import (
	"net/mail"
	"strings"
	"testing"
)

func readMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse test message: %v", err)
	}
	return msg
}

func TestExtractTextFromMessage(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		text   string
		isHTML bool
	}{
		{
			name: "plain without content type",
			raw:  "From: a@b\r\n\r\nHello there\r\n",
			text: "Hello there\r\n",
		},
		{
			name:   "single html part in base64",
			raw:    "Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\nPHA+QnV5IG5vdzwvcD4=\r\n",
			text:   "<p>Buy now</p>",
			isHTML: true,
		},
		{
			name: "wrapped base64",
			raw: "Content-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\n" +
				"Q2hlYXAgcGlsbHMgZm9y\r\nIHNhbGUsIGNsaWNrIGhl\r\ncmUgdG8gb3JkZXIgdG9k\r\nYXk=\r\n",
			text: "Cheap pills for sale, click here to order today",
		},
		{
			name: "alternative prefers plain",
			raw: "Content-Type: multipart/alternative; boundary=\"XYZ\"\r\n\r\n" +
				"--XYZ\r\nContent-Type: text/html\r\n\r\n<p>Hello <b>html</b></p>\r\n" +
				"--XYZ\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\nHello =\r\nplain\r\n" +
				"--XYZ--\r\n",
			text: "Hello plain\n",
		},
		{
			name: "nested html with attachment",
			raw: "Content-Type: multipart/mixed; boundary=\"OUT\"\r\n\r\n" +
				"--OUT\r\nContent-Type: multipart/alternative; boundary=\"IN\"\r\n\r\n" +
				"--IN\r\nContent-Type: text/html\r\n\r\n<p>Claim your prize</p>\r\n" +
				"--IN--\r\n" +
				"--OUT\r\nContent-Type: application/pdf\r\nContent-Transfer-Encoding: base64\r\n\r\nJVBERi0=\r\n" +
				"--OUT--\r\n",
			text:   "<p>Claim your prize</p>\n\n",
			isHTML: true,
		},
		{
			name: "attachments only",
			raw: "Content-Type: multipart/mixed; boundary=\"B\"\r\n\r\n" +
				"--B\r\nContent-Type: image/png\r\n\r\nPNG\r\n--B--\r\n",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := extractTextFromMessage(readMessage(t, tt.raw))
			if err != nil {
				t.Fatalf("extractTextFromMessage failed: %v", err)
			}
			if body.Text != tt.text || body.IsHTML != tt.isHTML {
				t.Errorf("got %q (html %v), want %q (html %v)", body.Text, body.IsHTML, tt.text, tt.isHTML)
			}
		})
	}
}

func TestDecodeBodyInvalidBase64(t *testing.T) {
	if _, err := decodeBody("base64", strings.NewReader("!!!not base64!!!")); err == nil {
		t.Error("expected an error for invalid base64")
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	got, err := decodeEncodedHeader("=?utf-8?b?R3LDvMOfZQ==?= und =?utf-8?q?mehr?=")
	if err != nil {
		t.Fatalf("decodeEncodedHeader failed: %v", err)
	}
	if got != "Grüße und mehr" {
		t.Errorf("unexpected value %q", got)
	}
}
