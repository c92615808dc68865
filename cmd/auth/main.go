package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		if err := genKey(os.Stdout, os.Args[2:]); err != nil {
			log.Fatalf("genkey: %v", err)
		}
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

// genKey writes a PEM private key for JWT_ALG=RS256 or ES256 (the default)
// to w, ready to be stored in the file named by JWT_SECRET_FILE.
func genKey(w io.Writer, args []string) error {
	alg := jwtx.AlgES256
	if len(args) > 0 {
		alg = strings.ToUpper(args[0])
	}

	var (
		pem string
		err error
	)
	switch alg {
	case jwtx.AlgRS256:
		pem, err = cryptox.GenerateRSAKeyPEM(2048)
	case jwtx.AlgES256:
		pem, err = cryptox.GenerateECKeyPEM()
	default:
		return fmt.Errorf("unsupported algorithm %q (want RS256 or ES256)", alg)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, pem)
	return err
}
