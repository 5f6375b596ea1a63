package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/streamrail/s3publish"
)

type putOpts struct {
	Path        string `short:"p" long:"path" description:"Path to file" required:"true"`
	Folder      string `long:"folder" short:"f" description:"Folder (key prefix) to upload into"`
	Filename    string `long:"filename" short:"n" description:"Object file name. Defaults to the base name of path"`
	ContentType string `long:"content-type" short:"t" description:"Content type. Defaults to the type of the file extension"`
	CommonOpts
	BucketOpts
}

var put putOpts

func (put *putOpts) Execute(args []string) (err error) {
	l := put.logger()
	b, conf, err := bucket(&put.CommonOpts, &put.BucketOpts)
	if err != nil {
		return
	}
	content, err := os.ReadFile(put.Path)
	if err != nil {
		return
	}
	filename := put.Filename
	if filename == "" {
		filename = filepath.Base(put.Path)
	}
	contentType := put.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}

	l.Debug().Str("path", put.Path).Int("size", len(content)).Msg("uploading")
	u, err := b.Upload(context.Background(), s3publish.Key(put.Folder, filename), content, contentType, conf)
	if err != nil {
		return
	}
	fmt.Println(u)
	return
}

func init() {
	_, err := parser.AddCommand("put", "upload a file to S3", "put (upload) a local file to the bucket and print its public URL", &put)
	if err != nil {
		log.Fatal(err)
	}
}
