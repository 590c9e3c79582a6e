package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctateo21/homelead/pkg/tlsutil"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Generate a self-signed CA and server certificate for local TLS",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		hosts, _ := cmd.Flags().GetStringSlice("host")

		files, err := tlsutil.GenerateDevCerts(hosts, out)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "WIZARD_TLS_CERT_FILE=%s\n", files.CertFile)
		fmt.Fprintf(w, "WIZARD_TLS_KEY_FILE=%s\n", files.KeyFile)
		fmt.Fprintf(w, "WIZARD_TLS_CA_FILE=%s\n", files.CAFile)
		return nil
	},
}

func init() {
	certsCmd.Flags().String("out", "certs", "output directory")
	certsCmd.Flags().StringSlice("host", []string{"localhost", "127.0.0.1"}, "hosts the certificate is valid for")
}
