package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/audiohal/internal/driver"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List ALSA PCM endpoints",
		Long:  `Enumerates the PCM devices of every sound card with their supported rates, channels and formats.`,
		RunE: func(c *cobra.Command, _ []string) error {
			pcms, err := driver.ListPCMs()
			if err != nil {
				return err
			}
			c.SilenceUsage = true
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pcms)
			}
			return printPCMs(c.OutOrStdout(), pcms)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func printPCMs(w io.Writer, pcms []driver.PCM) error {
	if len(pcms) == 0 {
		fmt.Fprintln(w, "No PCM devices found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tSTREAM\tCARD\tNAME\tCHANNELS\tRATES\tFORMATS")
	for _, p := range pcms {
		rates := make([]string, len(p.Rates))
		for i, r := range p.Rates {
			rates[i] = fmt.Sprint(r)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d-%d\t%s\t%s\n",
			p.Name, p.Stream, p.CardID, p.DeviceName,
			p.MinChannels, p.MaxChannels, strings.Join(rates, ","), strings.Join(p.Formats, ","))
	}
	return tw.Flush()
}
