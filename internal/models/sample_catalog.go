package models

import "time"

// SampleCatalog returns the fixed seed listings shown when no persisted
// catalog exists yet (first run / demo mode). The local product repository
// copies them into the real catalog on the first write.
func SampleCatalog() []Product {
	now := time.Now().UTC()
	return []Product{
		{
			ID:          "sample-1",
			Title:       "Vintage Wooden Chair",
			Description: "Beautiful handcrafted wooden chair with intricate details. Perfect for adding character to any room.",
			Price:       75.00,
			Category:    "Furniture",
			ImageURL:    "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?auto=format&fit=crop&w=800&q=80",
			OwnerID:     "sample-user-1",
			CreatedAt:   now,
			Seller:      &SellerRef{Username: "WoodCraftLover"},
		},
		{
			ID:          "sample-2",
			Title:       "Pre-loved Designer Jacket",
			Description: "Stylish designer jacket in excellent condition. Sustainable fashion at its best!",
			Price:       120.00,
			Category:    "Clothing",
			ImageURL:    "https://images.unsplash.com/photo-1560472354-b33ff0c44a43?auto=format&fit=crop&w=800&q=80",
			OwnerID:     "sample-user-2",
			CreatedAt:   now.Add(-time.Minute),
			Seller:      &SellerRef{Username: "FashionForward"},
		},
		{
			ID:          "sample-3",
			Title:       "Laptop - Barely Used",
			Description: "High-performance laptop in great condition. Perfect for students or professionals.",
			Price:       450.00,
			Category:    "Electronics",
			ImageURL:    "https://images.unsplash.com/photo-1556742502-ec7c0e9f34b1?auto=format&fit=crop&w=800&q=80",
			OwnerID:     "sample-user-3",
			CreatedAt:   now.Add(-2 * time.Minute),
			Seller:      &SellerRef{Username: "TechGuru"},
		},
		{
			ID:          "sample-4",
			Title:       "Collection of Classic Books",
			Description: "Amazing collection of classic literature books. Great for book lovers!",
			Price:       35.00,
			Category:    "Books",
			ImageURL:    "https://images.unsplash.com/photo-1564013799919-ab600027ffc6?auto=format&fit=crop&w=800&q=80",
			OwnerID:     "sample-user-4",
			CreatedAt:   now.Add(-3 * time.Minute),
			Seller:      &SellerRef{Username: "BookWorm"},
		},
	}
}
