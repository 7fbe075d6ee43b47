// htmlscan is a debug tool: it runs the HTML part processor over a file (or
// stdin) and dumps the extracted text, flags, URLs, images and blocks.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smarsching/rspamd/html"
	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

type urlReport struct {
	URL     string `json:"url"`
	Flags   uint32 `json:"flags"`
	Count   int    `json:"count"`
	Visible string `json:"visible,omitempty"`
}

type blockReport struct {
	Tag       string `json:"tag"`
	FontColor uint32 `json:"font_color"`
	BGColor   uint32 `json:"bg_color"`
	FontSize  uint8  `json:"font_size"`
	Visible   bool   `json:"visible"`
}

type report struct {
	Flags  uint32        `json:"flags"`
	Text   string        `json:"text"`
	URLs   []urlReport   `json:"urls"`
	Images int           `json:"images"`
	Blocks []blockReport `json:"blocks"`
}

func main() {
	var (
		allowCSS bool
		asJSON   bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "htmlscan [file]",
		Short: "Parse an HTML message part and dump the extraction results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			var input []byte
			var err error
			if len(args) == 1 {
				input, err = os.ReadFile(args[0])
			} else {
				input, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}

			pool := mempool.New()
			defer pool.Reset()

			hc := &html.Content{}
			urlSet := urlx.NewSet()
			var partURLs []*urlx.URL
			text := html.ProcessPart(pool, hc, input, html.Options{
				AllowCSS: allowCSS,
				URLSet:   urlSet,
				PartURLs: &partURLs,
			})

			rep := report{
				Flags:  uint32(hc.Flags),
				Text:   string(text),
				Images: len(hc.Images),
			}
			for _, u := range partURLs {
				rep.URLs = append(rep.URLs, urlReport{
					URL:     u.Raw,
					Flags:   uint32(u.Flags),
					Count:   u.Count,
					Visible: u.VisiblePart,
				})
			}
			for _, bl := range hc.Blocks {
				rep.Blocks = append(rep.Blocks, blockReport{
					Tag:       html.TagByID(bl.Tag.ID),
					FontColor: bl.FontColor.RGBA(),
					BGColor:   bl.BackgroundColor.RGBA(),
					FontSize:  bl.FontSize,
					Visible:   bl.Visible,
				})
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			fmt.Printf("flags: %#x\n", rep.Flags)
			fmt.Printf("text (%d bytes):\n%s\n", len(rep.Text), rep.Text)
			for _, u := range rep.URLs {
				fmt.Printf("url: %s flags=%#x count=%d\n", u.URL, u.Flags, u.Count)
			}
			for _, bl := range rep.Blocks {
				fmt.Printf("block: %s color=%#08x bg=%#08x size=%d visible=%v\n",
					bl.Tag, bl.FontColor, bl.BGColor, bl.FontSize, bl.Visible)
			}
			fmt.Printf("images: %d\n", rep.Images)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowCSS, "css", false, "parse <style> sheets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a JSON report")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
