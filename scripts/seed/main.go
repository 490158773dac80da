// Package main implements a standalone seed script that populates a running
// webservice instance with realistic test data. Everything goes through the
// HTTP API so that review aggregates and order totals are computed by the
// service itself.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func httpPost(url string, body any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}

func httpPatch(url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// createdID extracts data.id from a create response.
func createdID(result map[string]any) (int64, error) {
	data, ok := result["data"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("response missing data object")
	}
	id, ok := data["id"].(float64)
	if !ok {
		return 0, fmt.Errorf("response missing data.id")
	}
	return int64(id), nil
}

// --------------------------------------------------------------------------
// Seed data
// --------------------------------------------------------------------------

type productDef struct {
	name  string
	about string
	price int64
}

var products = []productDef{
	{"Wireless Bluetooth Headphones", "Premium noise-cancelling over-ear headphones with 30-hour battery life.", 7999},
	{"USB-C Hub Adapter", "7-in-1 USB-C hub with HDMI 4K output, 3x USB 3.0 ports, and 100W power delivery.", 3499},
	{"Mechanical Keyboard", "RGB backlit mechanical keyboard with Cherry MX Blue switches and full-size layout.", 8999},
	{"4K Webcam", "Ultra HD webcam for streaming with auto-focus, ring light, and privacy shutter.", 12999},
	{"Portable SSD 1TB", "Fast external solid state drive with USB 3.2 Gen 2 and up to 1050MB/s read speed.", 9999},
	{"Smart Watch Pro", "Advanced fitness tracker with heart rate monitoring, GPS, and 7-day battery life.", 19999},
	{"Coffee Maker", "12-cup programmable drip coffee brewer with built-in grinder and thermal carafe.", 4999},
	{"Cast Iron Skillet", "Pre-seasoned 12-inch cast iron skillet with helper handle, oven safe to 500F.", 3499},
	{"Yoga Mat Premium", "Non-slip 6mm thick exercise mat with alignment markings and carry strap.", 2999},
	{"Hiking Backpack 50L", "Durable adventure backpack with adjustable suspension and rain cover.", 8999},
	{"The Go Programming Language", "Comprehensive guide to Go by Donovan and Kernighan covering the fundamentals.", 3999},
	{"Designing Data-Intensive Apps", "Big ideas behind reliable, scalable, and maintainable data systems.", 4499},
}

var usernames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
}

var reviewLines = []string{
	"Exactly what I was looking for, works perfectly.",
	"Decent quality for the price, shipping was fast.",
	"Had higher expectations but it does the job.",
	"Outstanding build quality, would buy again.",
	"Stopped working after two weeks, disappointed.",
	"Great value, recommended it to my friends already.",
}

// --------------------------------------------------------------------------
// Main
// --------------------------------------------------------------------------

func main() {
	base := getEnv("WEBSERVICE_URL", "http://localhost:8000")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := rng.Intn(100000)

	log.Printf("Seeding webservice at %s", base)

	// ---------------------------------------------------------------
	// 1. Users
	// ---------------------------------------------------------------
	log.Println("Seeding users...")
	userIDs := make([]int64, 0, len(usernames))
	for _, name := range usernames {
		result, err := httpPost(base+"/users", map[string]any{
			"username": fmt.Sprintf("%s-%d", name, suffix),
			"email":    fmt.Sprintf("%s-%d@example.com", name, suffix),
			"password": "seed-password",
		})
		if err != nil {
			log.Printf("  WARNING: user %q: %v", name, err)
			continue
		}
		id, err := createdID(result)
		if err != nil {
			log.Printf("  WARNING: user %q: %v", name, err)
			continue
		}
		userIDs = append(userIDs, id)
		log.Printf("  User: %s (id=%d)", name, id)
	}
	if len(userIDs) == 0 {
		log.Fatal("no users created, aborting")
	}

	// ---------------------------------------------------------------
	// 2. Products
	// ---------------------------------------------------------------
	log.Println("Seeding products...")
	productIDs := make([]int64, 0, len(products))
	for _, p := range products {
		result, err := httpPost(base+"/products", map[string]any{
			"name":  p.name,
			"about": p.about,
			"price": p.price,
		})
		if err != nil {
			log.Printf("  WARNING: product %q: %v", p.name, err)
			continue
		}
		id, err := createdID(result)
		if err != nil {
			log.Printf("  WARNING: product %q: %v", p.name, err)
			continue
		}
		productIDs = append(productIDs, id)
		log.Printf("  Product: %s (id=%d)", p.name, id)
	}
	if len(productIDs) == 0 {
		log.Fatal("no products created, aborting")
	}

	// ---------------------------------------------------------------
	// 3. Reviews (aggregates recomputed server-side)
	// ---------------------------------------------------------------
	log.Println("Seeding reviews...")
	reviewCount := 0
	for _, productID := range productIDs {
		for _, userID := range userIDs {
			// Roughly a third of user/product pairs get a review.
			if rng.Intn(3) != 0 {
				continue
			}
			_, err := httpPost(base+"/reviews", map[string]any{
				"user_id":    userID,
				"product_id": productID,
				"score":      1 + rng.Intn(5),
				"content":    reviewLines[rng.Intn(len(reviewLines))],
			})
			if err != nil {
				log.Printf("  WARNING: review by user %d on product %d: %v", userID, productID, err)
				continue
			}
			reviewCount++
		}
	}
	log.Printf("  Created %d reviews", reviewCount)

	// ---------------------------------------------------------------
	// 4. Orders (totals snapshotted server-side, some marked paid)
	// ---------------------------------------------------------------
	log.Println("Seeding orders...")
	orderCount := 0
	for _, userID := range userIDs {
		n := 1 + rng.Intn(2)
		for i := 0; i < n; i++ {
			items := make([]int64, 1+rng.Intn(3))
			for j := range items {
				items[j] = productIDs[rng.Intn(len(productIDs))]
			}
			result, err := httpPost(base+"/orders", map[string]any{
				"user_id":     userID,
				"product_ids": items,
			})
			if err != nil {
				log.Printf("  WARNING: order for user %d: %v", userID, err)
				continue
			}
			orderCount++

			// Half of the orders get paid.
			if rng.Intn(2) == 0 {
				id, err := createdID(result)
				if err != nil {
					continue
				}
				if err := httpPatch(fmt.Sprintf("%s/orders/%d", base, id), map[string]any{"payment": true}); err != nil {
					log.Printf("  WARNING: pay order %d: %v", id, err)
				}
			}
		}
	}
	log.Printf("  Created %d orders", orderCount)

	log.Println("Seed complete.")
}
