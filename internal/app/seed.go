package app

import (
	"time"

	"martdesk/api/internal/store"
)

// Seed data for the in-memory panels. These collections reset on every
// restart; the database-backed panels load their rows in Bootstrap instead.

func seedUsers() []store.User {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []store.User{
		{ID: "1", Name: "Fresh Farms", Email: "contact@freshfarms.example", Phone: "555-0101", Role: "seller", Status: "active", Balance: 1250},
		{ID: "2", Name: "Aisha Karim", Email: "aisha@example.com", Phone: "555-0102", Role: "customer", Status: "active", Balance: 80},
		{ID: "3", Name: "Fresh Veggies", Email: "orders@freshveggies.example", Phone: "555-0103", Role: "seller", Status: "pending", Balance: 430},
		{ID: "4", Name: "Omar Haddad", Email: "omar@example.com", Phone: "555-0104", Role: "customer", Status: "suspended", Balance: 0},
		{ID: "5", Name: "City Bakery", Email: "hello@citybakery.example", Phone: "555-0105", Role: "seller", Status: "active", Balance: 990},
		{ID: "6", Name: "Lina Farah", Email: "lina@example.com", Phone: "555-0106", Role: "customer", Status: "inactive", Balance: 12},
		{ID: "7", Name: "Green Grocer", Email: "team@greengrocer.example", Phone: "555-0107", Role: "seller", Status: "active", Balance: 2210},
		{ID: "8", Name: "Sami Nasser", Email: "sami@example.com", Phone: "555-0108", Role: "customer", Status: "active", Balance: 45},
		{ID: "9", Name: "Dalia Aoun", Email: "dalia@example.com", Phone: "555-0109", Role: "customer", Status: "pending", Balance: 5},
		{ID: "10", Name: "Spice Route", Email: "sales@spiceroute.example", Phone: "555-0110", Role: "seller", Status: "inactive", Balance: 310},
		{ID: "11", Name: "Rania Take", Email: "rania@example.com", Phone: "555-0111", Role: "customer", Status: "active", Balance: 150},
		{ID: "12", Name: "Harbor Fish", Email: "fresh.catch@harborfish.example", Phone: "555-0112", Role: "seller", Status: "active", Balance: 770},
		{ID: "13", Name: "Nour Saad", Email: "nour@example.com", Phone: "555-0113", Role: "customer", Status: "active", Balance: 64},
		{ID: "14", Name: "Karim Odeh", Email: "karim@example.com", Phone: "555-0114", Role: "customer", Status: "suspended", Balance: 3},
		{ID: "15", Name: "Olive Press", Email: "info@olivepress.example", Phone: "555-0115", Role: "seller", Status: "active", Balance: 1825},
	}
	for i := range users {
		users[i].JoinedAt = base.AddDate(0, 0, i)
	}
	return users
}

func seedCategories() []store.Category {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return []store.Category{
		{ID: "1", Name: "Produce", Icon: "leaf", Color: "#4caf50", Subcategories: []string{"Vegetables", "Fruits", "Herbs"}, ProductCount: 182, UpdatedAt: base},
		{ID: "2", Name: "Bakery", Icon: "bread", Color: "#ff9800", Subcategories: []string{"Bread", "Pastries"}, ProductCount: 64, UpdatedAt: base.AddDate(0, 0, 3)},
		{ID: "3", Name: "Seafood", Icon: "fish", Color: "#2196f3", Subcategories: []string{"Fresh", "Frozen"}, ProductCount: 41, UpdatedAt: base.AddDate(0, 0, 5)},
		{ID: "4", Name: "Pantry", Icon: "jar", Color: "#795548", Subcategories: []string{"Spices", "Oils", "Grains"}, ProductCount: 230, UpdatedAt: base.AddDate(0, 0, 8)},
		{ID: "5", Name: "Dairy", Icon: "milk", Color: "#9c27b0", Subcategories: []string{"Milk", "Cheese", "Yogurt"}, ProductCount: 77, UpdatedAt: base.AddDate(0, 0, 12)},
	}
}

func seedInventory() []store.InventoryItem {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []store.InventoryItem{
		{ID: "1", Name: "Heirloom Tomatoes 1kg", SKU: "PRD-1001", Category: "Produce", SellerName: "Fresh Farms", Status: "in_stock", Price: 6.5, Stock: 140, UpdatedAt: base},
		{ID: "2", Name: "Sourdough Loaf", SKU: "BKY-2001", Category: "Bakery", SellerName: "City Bakery", Status: "in_stock", Price: 4.25, Stock: 36, UpdatedAt: base.AddDate(0, 0, 1)},
		{ID: "3", Name: "Wild Salmon Fillet", SKU: "SEA-3001", Category: "Seafood", SellerName: "Harbor Fish", Status: "low_stock", Price: 18.9, Stock: 8, UpdatedAt: base.AddDate(0, 0, 2)},
		{ID: "4", Name: "Za'atar Blend 200g", SKU: "PNT-4001", Category: "Pantry", SellerName: "Spice Route", Status: "in_stock", Price: 5.75, Stock: 92, UpdatedAt: base.AddDate(0, 0, 4)},
		{ID: "5", Name: "Cold-Pressed Olive Oil 750ml", SKU: "PNT-4002", Category: "Pantry", SellerName: "Olive Press", Status: "in_stock", Price: 14, Stock: 55, UpdatedAt: base.AddDate(0, 0, 5)},
		{ID: "6", Name: "Baby Spinach 500g", SKU: "PRD-1002", Category: "Produce", SellerName: "Green Grocer", Status: "out_of_stock", Price: 3.2, Stock: 0, UpdatedAt: base.AddDate(0, 0, 7)},
		{ID: "7", Name: "Butter Croissants x4", SKU: "BKY-2002", Category: "Bakery", SellerName: "City Bakery", Status: "low_stock", Price: 6, Stock: 5, UpdatedAt: base.AddDate(0, 0, 8)},
		{ID: "8", Name: "Sea Bass Whole", SKU: "SEA-3002", Category: "Seafood", SellerName: "Harbor Fish", Status: "in_stock", Price: 22.5, Stock: 19, UpdatedAt: base.AddDate(0, 0, 9)},
	}
}

func seedVerifications() []store.VerificationRequest {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return []store.VerificationRequest{
		{ID: "1", BusinessName: "Fresh Veggies", OwnerName: "Maha Sleiman", Email: "orders@freshveggies.example", Phone: "555-0103", Category: "Produce", Status: "pending", SubmittedAt: base, Documents: []store.VerificationDocument{}},
		{ID: "2", BusinessName: "Mountain Honey", OwnerName: "Ziad Barakat", Email: "ziad@mountainhoney.example", Phone: "555-0120", Category: "Pantry", Status: "pending", SubmittedAt: base.AddDate(0, 0, 2), Documents: []store.VerificationDocument{}},
		{ID: "3", BusinessName: "Cedar Dairy", OwnerName: "Hala Khoury", Email: "hala@cedardairy.example", Phone: "555-0121", Category: "Dairy", Status: "pending", SubmittedAt: base.AddDate(0, 0, 4), Documents: []store.VerificationDocument{}},
		{ID: "4", BusinessName: "Coast Catch", OwnerName: "Fadi Aziz", Email: "fadi@coastcatch.example", Phone: "555-0122", Category: "Seafood", Status: "pending", SubmittedAt: base.AddDate(0, 0, 6), Documents: []store.VerificationDocument{}},
	}
}

func seedSettings() []store.Setting {
	now := time.Now()
	return []store.Setting{
		{Key: "marketplace.name", Value: "MartDesk", Group: "general", Description: "Display name shown across the storefront", UpdatedBy: "system", UpdatedAt: now},
		{Key: "marketplace.currency", Value: "USD", Group: "general", Description: "Currency for listings and reports", UpdatedBy: "system", UpdatedAt: now},
		{Key: "payments.fee_percent", Value: "2.5", Group: "payments", Description: "Platform fee applied to completed payments", UpdatedBy: "system", UpdatedAt: now},
		{Key: "payments.refund_window_days", Value: "14", Group: "payments", Description: "Days a buyer can request a refund", UpdatedBy: "system", UpdatedAt: now},
		{Key: "sellers.auto_approve", Value: "false", Group: "sellers", Description: "Skip manual review of verification requests", UpdatedBy: "system", UpdatedAt: now},
		{Key: "notifications.reply_emails", Value: "true", Group: "notifications", Description: "Email customers when support replies to a complaint", UpdatedBy: "system", UpdatedAt: now},
	}
}
