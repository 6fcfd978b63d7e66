package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

var voicesCmd = &cobra.Command{
	Use:     "voices",
	Short:   "List the voices of the speech engine",
	Long:    paragraph(fmt.Sprintf("\n%s the voices offered by the engine selected with --tts or tts.engine. Pass the index or the name to --voice.", keyword("List"))),
	Example: paragraph("memegen voices --tts piper\nmemegen cat.jpg -T HELLO --tts piper --voice 2 --speak -o meme.png"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, engine, err := newEngine(ttsEngine)
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return listVoices(ctx, os.Stdout, engine)
	},
}

// listVoices prints one "index  label" line per voice.
func listVoices(ctx context.Context, w io.Writer, engine tts.Engine) error {
	catalog := voice.NewCatalog(voice.ProviderFunc(engine.Voices), nil)
	if err := catalog.Populate(ctx); err != nil {
		return err //nolint:wrapcheck
	}
	if catalog.Len() == 0 {
		_, err := fmt.Fprintln(w, "No voices available")
		return err //nolint:wrapcheck
	}

	width := runewidth.StringWidth(strconv.Itoa(catalog.Len() - 1))
	for i, v := range catalog.Voices() {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillLeft(strconv.Itoa(i), width), v.Label()); err != nil {
			return err //nolint:wrapcheck
		}
	}
	return nil
}
