// Command publish uploads files to Amazon S3 with hand-signed requests and
// serves the publish-file and notification functions over HTTP.
//
// Usage:
//   To run the function server:
//      $ publish serve --addr=:8080
//   To upload a file and print its public URL:
//      $ publish put --path=<local_path> --folder=<folder> --filename=<name>
//   To debug a signature mismatch:
//      $ publish sign --method=PUT --path=/avatars/u1.png -m host:photos.s3.eu-west-2.amazonaws.com
//
//
// Set the bucket and AWS keys as environment variables, or write them to
// ~/.s3publish.ini (see --writeini):
//
//  $ export AWS_REGION=<region>
//  $ export AWS_ACCESS_KEY_ID=<access_key>
//  $ export AWS_SECRET_ACCESS_KEY=<secret_key>
//  $ export S3_BUCKET_NAME=<bucket>
//
// The notification routes of serve need ClickSend credentials:
//
//  $ export CLICK_SEND_API_USERNAME=<username>
//  $ export CLICK_SEND_API_KEY=<api_key>
//  $ export CLICK_SEND_EMAIL_ADDRESS_ID=<id>
//
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const (
	name    = "publish"
	version = "0.1.0"
)

func main() {
	if err := parseIni(); err != nil {
		fmt.Fprintf(os.Stderr, "%s error: reading ini file: %s\n", name, err)
		os.Exit(1)
	}
	// parser calls the Execute function of the active command after parsing
	// the command line options.
	if _, err := parser.Parse(); err != nil {
		if appOpts.WriteIni {
			writeIni() // exits
		}

		// handling for flag parse errors
		if ferr, ok := err.(*flags.Error); ok {
			if ferr.Type == flags.ErrHelp {
				parser.WriteHelp(os.Stderr)
			} else {
				var cmd string
				if parser.Active != nil {
					cmd = parser.Active.Name
				}
				fmt.Fprintf(os.Stderr, "%s error: %s\n", name, err)
				fmt.Fprintf(os.Stderr, "run '%s %s --help' for usage.\n", name, cmd)
			}
		} else { // handle non-parse errors
			fmt.Fprintf(os.Stderr, "%s error: %s\n", name, err)
		}
		os.Exit(1)
	}
}
