// Package apikey genera y deriva las API keys de cuentas enterprise.
//
// Formato: "lvk_" + 48 caracteres hex (24 bytes aleatorios). En la base de datos
// solo se guarda el SHA-256 de la key completa y su prefijo visible.
package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// Scheme prefijo fijo de todas las keys emitidas.
	Scheme = "lvk_"
	// PrefixLen cantidad de caracteres visibles que se guardan para auditoría.
	PrefixLen = 12

	randomBytes = 24
)

// Key una API key recién emitida. Raw solo existe en memoria y se muestra una vez.
type Key struct {
	Raw    string
	Hash   string
	Prefix string
}

// Generate emite una key nueva.
func Generate() (Key, error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return Key{}, fmt.Errorf("apikey: leer entropía: %w", err)
	}
	raw := Scheme + hex.EncodeToString(b)
	return Key{Raw: raw, Hash: Hash(raw), Prefix: Prefix(raw)}, nil
}

// Hash devuelve el SHA-256 hex de la key presentada. Sirve como índice único de búsqueda.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Prefix devuelve los primeros PrefixLen caracteres (o la key completa si es más corta).
func Prefix(raw string) string {
	if len(raw) <= PrefixLen {
		return raw
	}
	return raw[:PrefixLen]
}
