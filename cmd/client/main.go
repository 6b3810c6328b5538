package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const defaultAddress = "localhost:8080"

// noteDTO - JSON представление заметки в API
type noteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

type noteResponse struct {
	Note noteDTO `json:"note"`
}

type notesResponse struct {
	Notes []noteDTO `json:"notes"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func main() {
	// Получаем адрес сервера из переменной окружения или используем значение по умолчанию
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}
	baseURL := "http://" + address

	log.Printf("Using notehub server at %s", baseURL)

	client := &http.Client{Timeout: 10 * time.Second}

	// Выбираем, какой тест запустить через переменную окружения или аргумент
	testType := os.Getenv("TEST_TYPE")
	if testType == "" && len(os.Args) > 1 {
		testType = os.Args[1]
	}

	switch testType {
	case "events", "stream":
		// Подписываемся на websocket поток событий
		subscribeToEvents(address)
	default:
		// Полный CRUD сценарий
		runCRUDDemo(client, baseURL)
	}
}

// runCRUDDemo прогоняет полный сценарий работы с заметками:
// создание, фильтрация, поиск, дублирование, обновление, удаление
func runCRUDDemo(client *http.Client, baseURL string) {
	log.Println("=== Creating notes ===")
	trip := createNote(client, baseURL, map[string]string{
		"title":    "Trip Plan",
		"body":     "Visit Kyoto and Osaka next spring",
		"category": "Travel",
	})
	standup := createNote(client, baseURL, map[string]string{
		"title":    "Standup Notes",
		"body":     "Discuss release schedule with the team",
		"category": "Work",
	})
	log.Printf("Created: %s %q [%s]", trip.Emoji, trip.Title, trip.ID)
	log.Printf("Created: %s %q [%s]", standup.Emoji, standup.Title, standup.ID)

	log.Println("=== Listing all notes ===")
	listNotes(client, baseURL, "")

	log.Println("=== Switching filter to Travel ===")
	setFilter(client, baseURL, "Travel")
	listNotes(client, baseURL, "")

	log.Println("=== Switching filter back to All ===")
	setFilter(client, baseURL, "All")

	log.Println("=== Searching for 'kyoto' ===")
	listNotes(client, baseURL, "kyoto")

	log.Println("=== Duplicating trip note ===")
	copyResp := post(client, baseURL+"/v1/notes/"+trip.ID+"/duplicate", nil)
	var dup noteResponse
	decode(copyResp, &dup)
	log.Printf("Duplicated as %q", dup.Note.Title)

	log.Println("=== Updating note body ===")
	patch(client, baseURL+"/v1/notes/"+trip.ID, map[string]string{
		"body": "Visit Kyoto, Osaka and Nara next spring",
	})

	log.Println("=== Category stats ===")
	resp, err := client.Get(baseURL + "/v1/categories/stats")
	if err != nil {
		log.Fatalf("Failed to get stats: %v", err)
	}
	var stats map[string]map[string]int
	decode(resp, &stats)
	for name, count := range stats["stats"] {
		fmt.Printf("  %-10s %d\n", name, count)
	}

	log.Println("=== Deleting duplicate ===")
	del(client, baseURL+"/v1/notes/"+dup.Note.ID)

	// Повторное удаление должно вернуть NOTE_NOT_FOUND
	log.Println("=== Deleting duplicate again (expected 404) ===")
	del(client, baseURL+"/v1/notes/"+dup.Note.ID)
}

func createNote(client *http.Client, baseURL string, fields map[string]string) noteDTO {
	resp := post(client, baseURL+"/v1/notes", fields)
	var nr noteResponse
	decode(resp, &nr)
	return nr.Note
}

func listNotes(client *http.Client, baseURL, query string) {
	url := baseURL + "/v1/notes"
	if query != "" {
		url += "?q=" + query
	}
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("Failed to list notes: %v", err)
	}
	var nr notesResponse
	decode(resp, &nr)
	for _, n := range nr.Notes {
		fmt.Printf("  %s [%s] %s\n", n.Emoji, n.Category, n.Title)
	}
}

func setFilter(client *http.Client, baseURL, category string) {
	body, _ := json.Marshal(map[string]string{"category": category})
	req, err := http.NewRequest(http.MethodPut, baseURL+"/v1/filter", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to set filter: %v", err)
	}
	resp.Body.Close()
}

func post(client *http.Client, url string, payload any) *http.Response {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	resp, err := client.Post(url, "application/json", body)
	if err != nil {
		log.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func patch(client *http.Client, url string, payload any) {
	data, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(data))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("PATCH %s failed: %v", url, err)
	}
	resp.Body.Close()
}

func del(client *http.Client, url string) {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("DELETE %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
			log.Printf("Server returned %d: %s (%s)", resp.StatusCode, er.Error, er.Code)
		}
		return
	}
	log.Printf("Deleted (%d)", resp.StatusCode)
}

// decode читает JSON ответ и завершает программу при ошибке API
func decode(resp *http.Response, out any) {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
			log.Fatalf("API error %d: %s (%s)", resp.StatusCode, er.Error, er.Code)
		}
		log.Fatalf("API error %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
}
