package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storybook-pipeline/application/ports/outbound"
)

type ffmpegAudioEngine struct {
	logger outbound.LoggerPort
}

func NewFFmpegAudioEngine(logger outbound.LoggerPort) outbound.AudioEnginePort {
	return &ffmpegAudioEngine{
		logger: logger,
	}
}

func (f *ffmpegAudioEngine) Concatenate(ctx context.Context, buffers [][]byte) ([]byte, error) {
	inputFiles := make([]string, 0, len(buffers))
	defer func() {
		for _, name := range inputFiles {
			if err := os.Remove(name); err != nil {
				f.logger.Error(err, "error removing audio input file")
			}
		}
	}()

	for _, buffer := range buffers {
		name := "/tmp/" + uuid.NewString() + ".mp3"
		if err := os.WriteFile(name, buffer, 0600); err != nil {
			f.logger.Error(err, "error writing audio input file")
			return nil, err
		}
		inputFiles = append(inputFiles, name)
	}

	outputFile := "/tmp/" + uuid.NewString() + ".mp3"
	defer func() {
		if err := os.Remove(outputFile); err != nil && !os.IsNotExist(err) {
			f.logger.Error(err, "error removing audio output file")
		}
	}()

	args := make([]string, 0, len(inputFiles)*2+8)
	for _, name := range inputFiles {
		args = append(args, "-i", name)
	}
	filter := fmt.Sprintf("concat=n=%d:v=0:a=1[out]", len(inputFiles))
	args = append(args, "-filter_complex", filter, "-map", "[out]", "-b:a", "128k", "-ar", "44100", outputFile)

	if err := f.run(ctx, "ffmpeg", args...); err != nil {
		f.logger.Error(err, "error concatenating audio clips")
		return nil, err
	}

	return os.ReadFile(outputFile)
}

func (f *ffmpegAudioEngine) Fade(ctx context.Context, buffer []byte, envelope outbound.FadeEnvelope) ([]byte, error) {
	inputFile := "/tmp/" + uuid.NewString() + ".mp3"
	if err := os.WriteFile(inputFile, buffer, 0600); err != nil {
		f.logger.Error(err, "error writing audio input file")
		return nil, err
	}
	defer func() {
		if err := os.Remove(inputFile); err != nil {
			f.logger.Error(err, "error removing audio input file")
		}
	}()

	duration, err := f.getAudioDuration(ctx, inputFile)
	if err != nil {
		return nil, err
	}

	fadeOutStart := duration - envelope.FadeOut
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	filter := fmt.Sprintf("afade=t=in:st=0:d=%g,afade=t=out:st=%g:d=%g",
		envelope.FadeIn, fadeOutStart, envelope.FadeOut)

	outputFile := "/tmp/" + uuid.NewString() + ".mp3"
	defer func() {
		if err := os.Remove(outputFile); err != nil && !os.IsNotExist(err) {
			f.logger.Error(err, "error removing audio output file")
		}
	}()

	if err := f.run(ctx, "ffmpeg", "-i", inputFile, "-af", filter, "-b:a", "128k", "-ar", "44100", outputFile); err != nil {
		f.logger.Error(err, "error applying fade envelope")
		return nil, err
	}

	return os.ReadFile(outputFile)
}

func (f *ffmpegAudioEngine) getAudioDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", filePath)

	out, err := cmd.Output()
	if err != nil {
		f.logger.Error(err, "error getting audio duration")
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		f.logger.Error(err, "error parsing audio duration")
		return 0, err
	}

	return duration, nil
}

func (f *ffmpegAudioEngine) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
