// Command keygen creates the Ed25519 key pair that signs session tokens.
// The PEM files are meant for SESSION_PRIVKEY and SESSION_PUBKEY.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// generateKeyPair returns PKCS#8 and PKIX PEM blocks for a new key.
func generateKeyPair() (privPEM, pubPEM []byte, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, nil, err
	}

	privPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM, nil
}

func writeKeys(dir string, force bool, privPEM, pubPEM []byte) (string, string, error) {
	privPath := filepath.Join(dir, "privkey.pem")
	pubPath := filepath.Join(dir, "pubkey.pem")

	if !force {
		for _, p := range []string{privPath, pubPath} {
			if _, err := os.Stat(p); err == nil {
				return "", "", fmt.Errorf("%s already exists, use -force to overwrite", p)
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", "", err
			}
		}
	}

	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return "", "", err
	}
	return privPath, pubPath, nil
}

func main() {
	dir := flag.String("out", ".", "Directory the key files are written to")
	force := flag.Bool("force", false, "Overwrite existing key files")
	flag.Parse()

	privPEM, pubPEM, err := generateKeyPair()
	if err == nil {
		var privPath, pubPath string
		privPath, pubPath, err = writeKeys(*dir, *force, privPEM, pubPEM)
		if err == nil {
			fmt.Println(titleStyle.Render("Session signing keys created"))
			fmt.Println("  private:", fileStyle.Render(privPath))
			fmt.Println("  public: ", fileStyle.Render(pubPath))
			fmt.Println(`Load them with SESSION_PRIVKEY="$(cat privkey.pem)" and SESSION_PUBKEY="$(cat pubkey.pem)".`)
			return
		}
	}

	fmt.Fprintln(os.Stderr, errStyle.Render("Error: "+err.Error()))
	os.Exit(1)
}
