// Command ftxdemo is a minimal host loop exercising the ftxengine
// façade: it starts the engine, submits one download, and pumps Loop()
// in a for-loop the way an embedding game or CLI would, the same shape
// as the teacher's dload.go command.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/warpdl/ftxengine"
)

func main() {
	app := cli.NewApp()
	app.Name = "ftxdemo"
	app.Usage = "download a URL with a live progress bar using the ftxengine façade"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "out", Usage: "destination file path", Value: "ftxdemo.download"},
		cli.IntFlag{Name: "block-size", Usage: "block size in MB", Value: 20},
		cli.BoolFlag{Name: "resume", Usage: "resume from a previous interrupted run"},
		cli.StringFlag{Name: "log-file", Usage: "durable log file, in addition to stderr", Value: "ftxdemo.log"},
	}
	app.Action = runDownload

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDownload(ctx *cli.Context) error {
	url := ctx.Args().First()
	if url == "" {
		return cli.ShowAppHelp(ctx)
	}
	destPath := ctx.String("out")

	cfg, err := ftxengine.NewFileLogging(ctx.String("log-file"))
	if err != nil {
		return err
	}
	client := ftxengine.StartUp(cfg)
	defer client.ShutDown()

	fmt.Printf("downloading %s -> %s\n", url, destPath)

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(0,
		mpb.PrependDecorators(decor.Name(destPath)),
		mpb.AppendDecorators(decor.AverageSpeed(decor.SizeB1000(0), "% .2f")),
	)

	done := make(chan bool, 1)
	client.PushDownload(url, destPath, func(ok bool, path string) {
		done <- ok
	}, ctx.Int("block-size"), ctx.Bool("resume"))

	// DownloadSize reports 0 once the job's terminal verdict has already
	// removed its dashboard entry, which can happen on the very iteration
	// Loop() delivers the callback — so only the last non-zero reading is
	// kept for the final print.
	var lastSize int64
	for {
		client.Loop()
		if size := client.DownloadSize(destPath); size > 0 {
			lastSize = size
		}
		bar.SetCurrent(lastSize)

		select {
		case ok := <-done:
			p.Wait()
			if !ok {
				return fmt.Errorf("download of %s failed, a range log was left behind for resume", destPath)
			}
			fmt.Printf("done: %s (%s)\n", destPath, humanize.Bytes(uint64(lastSize)))
			return nil
		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
}
