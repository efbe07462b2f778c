package main

import (
	"errors"
	"fmt"
	"os"

	"uvp-showroom/internal/common/config"
	"uvp-showroom/internal/i18n"
)

// ============================================================
// Translation Check
// ============================================================

// i18ncheck validates the translation tables. Without arguments it checks
// the tables compiled into the binary; with a directory it checks the
// <lang>.json files found there.
func main() {
	var (
		bundle *i18n.Bundle
		err    error
	)
	if len(os.Args) > 1 {
		bundle, err = i18n.LoadFromFS(os.DirFS(os.Args[1]), ".")
	} else {
		bundle, err = i18n.LoadEmbedded()
	}

	var missing *i18n.MissingKeysError
	if errors.As(err, &missing) {
		for lang, keys := range missing.Missing {
			for _, key := range keys {
				fmt.Fprintf(os.Stderr, "%s: missing %s\n", lang, key)
			}
		}
		os.Exit(1)
	}
	if err != nil {
		config.Exitf("i18ncheck: %v", err)
	}

	for _, lang := range bundle.Languages() {
		fmt.Printf("%s: %d keys\n", lang, len(bundle.Table(lang).Keys()))
	}
}
