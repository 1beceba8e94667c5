// This tool generates a small broadcast wav file carrying bext and iXML
// metadata chunks, useful as a fixture for exercising metadata readers.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/prodsound/wavmeta"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-bwf", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 1, "length in seconds of output file")
	show := flagSet.String("show", "TEST SHOW", "show name for the iXML chunk")
	scene := flagSet.String("scene", "1A", "scene identifier for the iXML chunk")
	take := flagSet.String("take", "1", "take number for the iXML chunk")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec broadcast wav at %f hz", *length, *frequency)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	const sampleRate = 48000

	numSamples := int(sampleRate * *length)
	buf := &audio.Float32Buffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]float32, numSamples),
	}

	for i := 0; i < numSamples; i++ {
		buf.Data[i] = float32(math.Sin(float64(i) / sampleRate * *frequency * 2 * math.Pi))
	}

	rec := wavmeta.Record{Show: *show, Scene: *scene, Take: *take}

	ixml, err := wavmeta.BuildIXML(rec)
	if err != nil {
		return fmt.Errorf("failed to build iXML chunk: %w", err)
	}

	enc := wavmeta.NewEncoder(file, sampleRate, 16, 1, 1)
	enc.Metadata = &wavmeta.Metadata{
		Broadcast: &wavmeta.BroadcastExtension{
			Description: fmt.Sprintf("SHOW: %s\nSCENE: %s\nTAKE: %s", *show, *scene, *take),
			Originator:  "gen-bwf",
			Version:     1,
		},
		IXML: ixml,
	}

	err = enc.Write(buf)
	if err != nil {
		return fmt.Errorf("failed to write audio buffer: %w", err)
	}

	return enc.Close()
}
