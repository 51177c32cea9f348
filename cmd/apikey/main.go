// Command apikey derives the ADMIN_API_KEY_HASH and ADMIN_API_KEY_SALT values
// for an operator key.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kidsevents/marketplace_backend/internal/util"
)

func main() {
	key := flag.String("key", os.Getenv("ADMIN_API_KEY"), "operator API key to hash")
	flag.Parse()

	derived, err := util.DeriveAPIKey(*key)
	if err != nil {
		log.Fatalf("derive api key: %v", err)
	}
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", derived.HashHex())
	fmt.Printf("ADMIN_API_KEY_SALT=%s\n", derived.SaltHex())
}
