package filter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// maxMultipartDepth bounds recursion into nested multipart bodies
const maxMultipartDepth = 8

// textBody is the content chosen for checking
type textBody struct {
	Text   string
	IsHTML bool
}

// extractTextFromMessage picks the text to check from a message. For
// multipart messages text/plain parts are preferred, then text/html.
func extractTextFromMessage(msg *mail.Message) (textBody, error) {
	return extractPart(textproto.MIMEHeader(msg.Header), msg.Body, 0)
}

func extractPart(header textproto.MIMEHeader, body io.Reader, depth int) (textBody, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		// a missing or broken Content-Type is read as text/plain
		mediaType = "text/plain"
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := decodeBody(header.Get("Content-Transfer-Encoding"), body)
		if err != nil {
			return textBody{}, err
		}
		return textBody{Text: string(data), IsHTML: mediaType == "text/html"}, nil
	}

	boundary, ok := params["boundary"]
	if !ok || depth >= maxMultipartDepth {
		data, err := io.ReadAll(body)
		if err != nil {
			return textBody{}, err
		}
		return textBody{Text: string(data)}, nil
	}

	var plain, html bytes.Buffer
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// keep whatever was read before the broken part
			break
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		switch {
		case strings.HasPrefix(partType, "multipart/"):
			nested, err := extractPart(part.Header, part, depth+1)
			if err != nil {
				continue
			}
			if nested.IsHTML {
				html.WriteString(nested.Text)
				html.WriteString("\n")
			} else {
				plain.WriteString(nested.Text)
				plain.WriteString("\n")
			}
		case partType == "text/plain" || partType == "":
			data, err := decodeBody(part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				continue
			}
			plain.Write(data)
			plain.WriteString("\n")
		case partType == "text/html":
			data, err := decodeBody(part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				continue
			}
			html.Write(data)
			html.WriteString("\n")
		}
		// attachments and other parts are skipped
	}

	if strings.TrimSpace(plain.String()) != "" {
		return textBody{Text: plain.String()}, nil
	}
	if strings.TrimSpace(html.String()) != "" {
		return textBody{Text: html.String(), IsHTML: true}, nil
	}
	return textBody{}, nil
}

// decodeBody undoes the Content-Transfer-Encoding of a part
func decodeBody(encoding string, r io.Reader) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		data, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, newlineStripper{r}))
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		return data, nil
	case "quoted-printable":
		data, err := io.ReadAll(quotedprintable.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("failed to decode quoted-printable body: %w", err)
		}
		return data, nil
	default:
		return io.ReadAll(r)
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	for {
		count, err := n.r.Read(p)
		kept := 0
		for _, b := range p[:count] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

// decodeEncodedHeader decodes an RFC 2047 header value
func decodeEncodedHeader(value string) (string, error) {
	dec := new(mime.WordDecoder)
	return dec.DecodeHeader(value)
}
