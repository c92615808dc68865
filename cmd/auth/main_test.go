package main

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestGenKey(t *testing.T) {
	for _, tt := range []struct {
		args []string
		alg  string
	}{
		{nil, jwtx.AlgES256},
		{[]string{"es256"}, jwtx.AlgES256},
		{[]string{"RS256"}, jwtx.AlgRS256},
	} {
		t.Run(tt.alg, func(t *testing.T) {
			var out strings.Builder
			require.NoError(t, genKey(&out, tt.args))

			codec, err := jwtx.NewCodec(tt.alg, out.String(), time.Minute)
			require.NoError(t, err, "generated key is accepted as JWT_SECRET")

			tok, err := codec.IssueAccess("u1", nil, time.Now())
			require.NoError(t, err)
			_, err = codec.DecodeAccess(tok)
			require.NoError(t, err)
		})
	}

	t.Run("HS256 is rejected", func(t *testing.T) {
		require.ErrorContains(t, genKey(&strings.Builder{}, []string{"HS256"}), "unsupported algorithm")
	})
}
