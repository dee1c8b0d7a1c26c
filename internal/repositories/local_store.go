package repositories

import (
	"encoding/json"
	"fmt"

	"ecofinds/pkg/kvstore"
)

// Key scheme for the local store. Every document lives under one prefix so
// unrelated rows in a shared store are never touched.
const keyPrefix = "ecofinds_"

func productsKey() string               { return keyPrefix + "products" }
func cartKey(userID string) string      { return keyPrefix + "cart_items_" + userID }
func purchasesKey(userID string) string { return keyPrefix + "purchases_" + userID }
func salesKey(userID string) string     { return keyPrefix + "sales_" + userID }
func profileKey(userID string) string   { return keyPrefix + "profile_" + userID }

// getJSON reads and decodes the document at key. The boolean reports whether
// the key was present at all, which matters for first-run seeding.
func getJSON(kv *kvstore.Store, key string, dest interface{}) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("corrupt document at key %s: %w", key, err)
	}
	return true, nil
}

func setJSON(kv *kvstore.Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document for key %s: %w", key, err)
	}
	return kv.Set(key, string(raw))
}
