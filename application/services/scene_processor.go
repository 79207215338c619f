package services

import (
	"context"
	"fmt"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
	"storybook-pipeline/voices"
)

type sceneProcessor struct {
	synthesizer  outbound.SpeechSynthesizerPort
	soundEffects outbound.SoundEffectPort
	illustrator  outbound.IllustratorPort
	imageFetcher outbound.ImageFetcherPort
	mixer        inbound.AudioMixerPort
	assetStore   outbound.AssetStorePort
	storyRepo    outbound.StoryRepositoryPort
	state        outbound.StoryStatePort
	logger       outbound.LoggerPort
	pipelineCfg  *config.PipelineConfig
	defaultVoice string
}

func NewSceneProcessor(
	synthesizer outbound.SpeechSynthesizerPort,
	soundEffects outbound.SoundEffectPort,
	illustrator outbound.IllustratorPort,
	imageFetcher outbound.ImageFetcherPort,
	mixer inbound.AudioMixerPort,
	assetStore outbound.AssetStorePort,
	storyRepo outbound.StoryRepositoryPort,
	state outbound.StoryStatePort,
	logger outbound.LoggerPort,
	pipelineCfg *config.PipelineConfig,
	defaultVoice string) inbound.SceneProcessorPort {
	return &sceneProcessor{
		synthesizer:  synthesizer,
		soundEffects: soundEffects,
		illustrator:  illustrator,
		imageFetcher: imageFetcher,
		mixer:        mixer,
		assetStore:   assetStore,
		storyRepo:    storyRepo,
		state:        state,
		logger:       logger,
		pipelineCfg:  pipelineCfg,
		defaultVoice: defaultVoice,
	}
}

// ProcessScene drives one page through synthesis, mixing, and illustration.
// Provider failures are recorded against the page state and processing moves
// on; only a cancelled context stops the scene early.
func (s *sceneProcessor) ProcessScene(ctx context.Context, params inbound.ProcessSceneParams) error {
	storyID, page := params.StoryID, params.PageNumber

	s.state.SetPageStatus(ctx, storyID, page, domain.PageStatusProcessing)
	s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("Setting the stage for scene %d...", page))
	s.logger.InfoWithFields("scene starting processing", map[string]interface{}{
		"story_id": storyID,
		"page":     page,
	})

	hasError := false
	var audioBuffers [][]byte

	if s.pipelineCfg.EnableAudio {
		audioBuffers = s.processTimeline(ctx, params, &hasError)
	} else {
		s.state.AppendPageLog(ctx, storyID, page, "Audio pipeline disabled - skipping narration, dialogue, and SFX.")
	}

	if ctx.Err() != nil {
		s.state.AppendPageLog(ctx, storyID, page, "Scene cancelled.")
		return ctx.Err()
	}

	if len(audioBuffers) > 0 {
		if !s.mixAndPersist(ctx, storyID, page, audioBuffers) {
			hasError = true
		}
	} else {
		s.state.AppendPageLog(ctx, storyID, page, "No audio generated for this scene.")
	}

	if ctx.Err() != nil {
		s.state.AppendPageLog(ctx, storyID, page, "Scene cancelled.")
		return ctx.Err()
	}

	if !s.illustrate(ctx, params) {
		hasError = true
	}

	if !hasError {
		s.state.AppendPageLog(ctx, storyID, page, "Scene ready for showtime.")
		s.state.SetPageStatus(ctx, storyID, page, domain.PageStatusCompleted)
		s.logger.InfoWithFields("scene completed", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
	} else {
		s.logger.WarnWithFields("scene completed with issues", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
	}

	return nil
}

// processTimeline walks the beats strictly in order. Later beats may depend on
// earlier context and the collected buffer order is the concatenation order.
func (s *sceneProcessor) processTimeline(ctx context.Context, params inbound.ProcessSceneParams, hasError *bool) [][]byte {
	storyID, page := params.StoryID, params.PageNumber
	var buffers [][]byte

	for _, beat := range params.Timeline {
		if ctx.Err() != nil {
			return buffers
		}

		switch beat.Type {
		case domain.NarrationBeat:
			s.state.AppendPageLog(ctx, storyID, page, "Narrator steps into the spotlight.")
			voiceID := voices.PickNarrationVoice(beat, params.NarratorVoiceID, s.defaultVoice)
			if voiceID == "" {
				s.state.AppendPageLog(ctx, storyID, page, "No narrator voice configured; skipping narration line.")
				continue
			}
			buffer, ok := s.synthesizeLine(ctx, params, beat, voiceID, domain.NarrationBeat, hasError)
			if ok {
				buffers = append(buffers, buffer)
				s.state.AppendPageLog(ctx, storyID, page, "Narration line captured.")
			}

		case domain.CharacterBeat:
			name := beat.Name
			if name == "" {
				name = "Character"
			}
			s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("%s delivers a line.", name))
			voiceID := voices.PickCharacterVoice(beat)
			buffer, ok := s.synthesizeLine(ctx, params, beat, voiceID, domain.CharacterBeat, hasError)
			if ok {
				buffers = append(buffers, buffer)
				s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("%s line recorded.", name))
			}

		case domain.SfxBeat:
			description := beat.Description
			if description == "" {
				description = beat.Text
			}
			if description == "" {
				s.state.AppendPageLog(ctx, storyID, page, "Empty sound effect skipped.")
				continue
			}
			s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("Generating sound effect: %s.", description))
			effect, err := s.soundEffects.SynthesizeEffect(ctx, description)
			if err != nil {
				*hasError = true
				s.state.RecordPageError(ctx, storyID, page, string(domain.SfxBeat), err.Error())
				s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("Sound effect generation failed: %s - continuing without SFX.", err.Error()))
				continue
			}
			faded := s.mixer.ApplyFade(ctx, effect, description)
			buffers = append(buffers, faded)
			s.state.AppendPageLog(ctx, storyID, page, "Sound effect ready with fade effects.")

		default:
			s.state.AppendPageLog(ctx, storyID, page, fmt.Sprintf("Unknown beat type %q skipped.", beat.Type))
		}
	}

	return buffers
}

// synthesizeLine runs one spoken beat. A synthesis failure is recorded against
// the page with the beat type as step and the loop continues.
func (s *sceneProcessor) synthesizeLine(ctx context.Context, params inbound.ProcessSceneParams, beat domain.Beat,
	voiceID string, beatType domain.BeatType, hasError *bool) ([]byte, bool) {
	if beat.Text == "" {
		return nil, false
	}

	settings := beat.VoiceSettings
	if settings == nil {
		defaults := voices.DefaultCharacterSettings
		settings = &defaults
	}

	result, err := s.synthesizer.Synthesize(ctx, outbound.SynthesizeSpeechRequest{
		Text:          beat.Text,
		VoiceID:       voiceID,
		VoiceSettings: settings,
	})
	if err != nil {
		*hasError = true
		s.state.RecordPageError(ctx, params.StoryID, params.PageNumber, string(beatType), err.Error())
		s.state.AppendPageLog(ctx, params.StoryID, params.PageNumber, fmt.Sprintf("Audio step failed: %s", err.Error()))
		s.logger.ErrorWithFields(err, "failed to process beat", map[string]interface{}{
			"story_id": params.StoryID,
			"page":     params.PageNumber,
			"beat":     string(beatType),
		})
		return nil, false
	}
	return result.Audio, true
}

// mixAndPersist concatenates the collected buffers and stores the result.
// Failure is a mixing step error but does not prevent illustration.
func (s *sceneProcessor) mixAndPersist(ctx context.Context, storyID string, page int, buffers [][]byte) bool {
	s.state.AppendPageLog(ctx, storyID, page, "Stitching narration, dialogue, and sound effects in sequence.")

	mixed := s.mixer.MixSequential(ctx, buffers)
	if mixed == nil {
		return true
	}

	audioURL, err := s.assetStore.PersistAudio(ctx, storyID, page, mixed, "audio/mpeg")
	if err != nil {
		s.state.RecordPageError(ctx, storyID, page, domain.MixingStep, err.Error())
		s.state.AppendPageLog(ctx, storyID, page, "Audio mixing stumbled.")
		s.logger.ErrorWithFields(err, "failed to persist mixed audio", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
		return false
	}

	if err := s.storyRepo.UpdatePage(ctx, storyID, page, outbound.PageAssetURLs{AudioURL: &audioURL}); err != nil {
		s.logger.ErrorWithFields(err, "failed to persist audio url to story repository", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
	}
	s.state.SetPageAssets(ctx, storyID, page, domain.PageAssets{Audio: audioURL})
	s.state.AppendPageLog(ctx, storyID, page, "Sequential audio mix complete and saved.")
	return true
}

// illustrate requests the page illustration and captures the story's
// reference image from the first success.
func (s *sceneProcessor) illustrate(ctx context.Context, params inbound.ProcessSceneParams) bool {
	storyID, page := params.StoryID, params.PageNumber

	if !s.pipelineCfg.EnableImages {
		s.state.AppendPageLog(ctx, storyID, page, "Image pipeline disabled; skipping illustration.")
		return true
	}
	if params.ImagePrompt == "" {
		s.state.AppendPageLog(ctx, storyID, page, "No image prompt provided; skipping illustration.")
		return true
	}

	s.state.AppendPageLog(ctx, storyID, page, "Painting the illustration...")

	referenceImages := make([]string, 0, len(params.CharacterReferences)+1)
	if ref := s.state.GetReferenceImage(ctx, storyID); ref != "" {
		referenceImages = append(referenceImages, ref)
	}
	for _, ref := range params.CharacterReferences {
		if ref.ImageBase64 != "" {
			referenceImages = append(referenceImages, ref.ImageBase64)
		}
	}

	result, err := s.illustrator.Illustrate(ctx, outbound.IllustrateRequest{
		Prompt:          params.ImagePrompt,
		PageNumber:      page,
		StoryID:         storyID,
		ArtStyle:        params.ArtStyle,
		ReferenceImages: referenceImages,
	})
	if err != nil {
		s.state.RecordPageError(ctx, storyID, page, domain.IllustrationStep, err.Error())
		s.state.AppendPageLog(ctx, storyID, page, "Illustration failed.")
		s.logger.ErrorWithFields(err, "illustration failed", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
		return false
	}

	s.captureReferenceImage(ctx, storyID, result.ImageURL)

	imageURL := result.ImageURL
	if err := s.storyRepo.UpdatePage(ctx, storyID, page, outbound.PageAssetURLs{ImageURL: &imageURL}); err != nil {
		s.logger.ErrorWithFields(err, "failed to persist image url to story repository", map[string]interface{}{
			"story_id": storyID,
			"page":     page,
		})
	}
	s.state.SetPageAssets(ctx, storyID, page, domain.PageAssets{Image: imageURL})
	s.state.AppendPageLog(ctx, storyID, page, "Illustration complete.")
	return true
}

// captureReferenceImage downloads the first illustration of a story and keeps
// it for character consistency on later pages. First write wins; a download
// failure only costs consistency, never the scene.
func (s *sceneProcessor) captureReferenceImage(ctx context.Context, storyID, imageURL string) {
	if s.state.GetReferenceImage(ctx, storyID) != "" {
		return
	}
	imageBase64, err := s.imageFetcher.FetchBase64(ctx, imageURL)
	if err != nil {
		s.logger.WarnWithFields("failed to download reference image", map[string]interface{}{
			"story_id": storyID,
			"error":    err.Error(),
		})
		return
	}
	s.state.SetReferenceImage(ctx, storyID, imageBase64)
}
