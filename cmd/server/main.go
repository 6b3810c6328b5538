package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"notehub/internal/config"
	"notehub/internal/server"
)

const configFile = "config.yml"

func main() {
	// Загружаем конфигурацию из файла
	appConfig, err := config.InitConfig[config.Config](configFile)
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}

	// Создаем и инициализируем сервер
	srv, err := server.NewServer(appConfig)
	if err != nil {
		log.Fatalf("Error creating server: %v", err)
	}

	if err := srv.Initialize(); err != nil {
		log.Fatalf("Error initializing server: %v", err)
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Запуск HTTP сервера
	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}
