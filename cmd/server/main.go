package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/abdelghafour1223/tiktok-downloder/internal/api"
	"github.com/abdelghafour1223/tiktok-downloder/internal/captcha"
	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
	"github.com/abdelghafour1223/tiktok-downloder/internal/downloader"
	"github.com/abdelghafour1223/tiktok-downloder/internal/jobs"
	"github.com/abdelghafour1223/tiktok-downloder/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	// 1. Hazırlık: Dosya sistemi
	if err := server.PrepareFilesystem(cfg); err != nil {
		log.Fatalf(">>> ❌ Error preparing filesystem: %v", err)
	}

	// 2. Servisler: Engine, reCAPTCHA, Janitor
	engine := downloader.NewEngine(cfg, downloader.NewNameSequence())
	captchaSvc := captcha.New(cfg.RecaptchaSecret)
	janitor := jobs.NewJanitor(cfg, jobs.NewTimerScheduler())
	janitor.StartSweeper()

	if cfg.RecaptchaEnabled() {
		log.Println("🔒 reCAPTCHA protection is ENABLED")
	} else {
		log.Println("⚠️ reCAPTCHA protection is DISABLED - set RECAPTCHA_SECRET_KEY to enable")
	}

	// 3. Router: Middleware dahil edilmiş haliyle
	handler := api.NewHandler(cfg, engine, captchaSvc, janitor)
	router := api.NewRouter(handler, cfg)

	fmt.Println(">>> 🏭 TikTok Downloader Server Started")
	fmt.Printf(">>> ⚡ Listening on: %s\n", cfg.Addr())
	fmt.Printf(">>> 📁 Downloads directory: %s\n", cfg.DownloadDir)

	// 4. Start
	log.Fatal(http.ListenAndServe(cfg.Addr(), router))
}
