package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/Aashish23092/receipt-capture/client"
	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
	"github.com/Aashish23092/receipt-capture/utils"
)

func main() {
	fs := ff.NewFlagSet("receiptparse")
	var (
		textPath     = fs.StringLong("text", "", "OCR text file to parse (- for stdin)")
		imagePath    = fs.StringLong("image", "", "receipt image to OCR with Tesseract, then parse")
		parserConfig = fs.StringLong("parser-config", "", "YAML parser configuration (defaults built in)")
		tessdata     = fs.StringLong("tessdata", "", "Tesseract tessdata directory")
		languages    = fs.StringLong("lang", "eng", "Tesseract languages, comma separated")
		logLevel     = fs.StringLong("log-level", "warn", "log level: debug, info, warn, error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTPARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	logger.Configure(os.Stderr, *logLevel, logger.FormatConsole)

	if (*textPath == "") == (*imagePath == "") {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: exactly one of --text or --image is required")
		os.Exit(2)
	}

	cfg, err := config.LoadParserConfig(*parserConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	parser, err := utils.NewReceiptParser(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var fields dto.ReceiptFields
	if *textPath != "" {
		text, err := readInput(*textPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fields = parser.Parse(text)
	} else {
		image, err := os.ReadFile(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		tc := client.NewTesseractClient(*tessdata, splitLanguages(*languages)...)
		frags, err := tc.DetectText(context.Background(), image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fields = parser.ParseFragments(frags)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func splitLanguages(s string) []string {
	var langs []string
	for l := range strings.SplitSeq(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
