package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/application/services"
	"storybook-pipeline/config"
	"storybook-pipeline/infrastructure/adapters"
	"storybook-pipeline/infrastructure/gin_interface/controllers"
	"storybook-pipeline/middleware"
	"storybook-pipeline/mock"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on process environment")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	state := newStateStore(pipelineConfig, zeroLogger)

	var (
		synthesizer     outbound.SpeechSynthesizerPort
		soundEffects    outbound.SoundEffectPort
		illustrator     outbound.IllustratorPort
		imageFetcher    outbound.ImageFetcherPort
		audioEngine     outbound.AudioEnginePort
		assetStore      outbound.AssetStorePort
		storyRepo       outbound.StoryRepositoryPort
		scriptGenerator outbound.ScriptGeneratorPort
		narratorVoiceID string
	)

	if pipelineConfig.MockProviders {
		log.Info().Msg("Using mock providers")
		synthesizer = mock.SpeechSynthesizer{}
		soundEffects = mock.SoundEffects{}
		illustrator = mock.Illustrator{}
		imageFetcher = mock.ImageFetcher{}
		audioEngine = mock.AudioEngine{}
		assetStore = mock.AssetStore{}
		storyRepo = mock.StoryRepository{}
		scriptGenerator = mock.ScriptGenerator{}
	} else {
		elevenLabsConfig, err := config.GetElevenLabsConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get eleven labs config")
		}

		runwareConfig, err := config.GetRunwareConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get runware config")
		}

		gptConfig, err := config.GetGptConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get gpt config")
		}

		s3Config, err := config.GetS3Config()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get s3 config")
		}

		dynamoConfig, err := config.GetDynamoConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get dynamo config")
		}

		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
		s3Client := s3.New(sess)
		dynamoClient := dynamodb.New(sess)

		contentFetcher := adapters.NewContentFetcher(zeroLogger)

		synthesizer = adapters.NewElevenLabsSynthesizer(contentFetcher, elevenLabsConfig)
		soundEffects = adapters.NewElevenLabsSoundEffects(contentFetcher, elevenLabsConfig, zeroLogger)
		illustrator = adapters.NewRunwareIllustrator(contentFetcher, runwareConfig, zeroLogger)
		imageFetcher = adapters.NewImageFetcher(contentFetcher)
		audioEngine = adapters.NewFFmpegAudioEngine(zeroLogger)
		assetStore = adapters.NewS3AssetStore(s3Client, s3Config)
		storyRepo = adapters.NewDynamoStoryRepository(zeroLogger, dynamoClient, dynamoConfig)
		scriptGenerator = adapters.NewOpenAiScriptGenerator(gptConfig, zeroLogger)
		narratorVoiceID = elevenLabsConfig.NarratorVoiceId
	}

	audioMixer := services.NewAudioMixer(audioEngine, zeroLogger)

	sceneProcessor := services.NewSceneProcessor(synthesizer, soundEffects, illustrator, imageFetcher,
		audioMixer, assetStore, storyRepo, state, zeroLogger, pipelineConfig, narratorVoiceID)

	storyProcessor := services.NewStoryProcessor(sceneProcessor, storyRepo, state, workerPool,
		zeroLogger, pipelineConfig)

	storyBuilder := services.NewStoryBuilder(scriptGenerator, storyProcessor, storyRepo, state,
		workerPool, zeroLogger)

	storyController := controllers.NewStoryController(zeroLogger, storyBuilder, state)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	storyController.RegisterRoutes(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}

func newStateStore(pipelineConfig *config.PipelineConfig, logger outbound.LoggerPort) outbound.StoryStatePort {
	redisConfig := config.GetRedisConfig()
	if redisConfig == nil {
		return adapters.NewMemoryStateStore(pipelineConfig.StateTTL, logger)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	log.Info().Str("addr", redisConfig.Addr).Msg("Using redis state store")
	return adapters.NewRedisStateStore(client, pipelineConfig.StateTTL, logger)
}
