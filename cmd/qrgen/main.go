// Command qrgen renders a QR code PNG for a gallery access link so the
// couple can print it on table cards.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

func main() {
	baseURL := flag.String("url", "", "gallery base URL, e.g. https://photos.example.com/gallery")
	token := flag.String("token", "", "access token to embed in the link")
	out := flag.String("out", "gallery-qr.png", "output PNG path")
	size := flag.Int("size", 512, "image size in pixels")
	flag.Parse()

	if *baseURL == "" || *token == "" {
		fmt.Fprintln(os.Stderr, "usage: qrgen -url <gallery-url> -token <access-token> [-out file.png] [-size px]")
		os.Exit(2)
	}

	link, err := buildLink(*baseURL, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid gallery URL: %v\n", err)
		os.Exit(1)
	}

	if err := qrcode.WriteFile(link, qrcode.Medium, *size, *out); err != nil {
		fmt.Fprintf(os.Stderr, "write QR code: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s for %s\n", *out, link)
}

func buildLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
