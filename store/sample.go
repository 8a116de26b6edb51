package store

import (
	models "storefront/model"

	"github.com/shopspring/decimal"
)

// SampleProducts is the starter catalog loaded when SEED_PRODUCTS is on.
func SampleProducts() []models.Product {
	p := func(id, name, desc, price, category, image string, featured bool) models.Product {
		return models.Product{
			ID:          id,
			Name:        name,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			Image:       image,
			Featured:    featured,
		}
	}
	const img = "https://images.igdb.com/igdb/image/upload/t_cover_big/"
	return []models.Product{
		p("1", "Call of Duty: Modern Warfare", "Intense first-person shooter with realistic graphics and immersive gameplay", "59.99", "Action", img+"co1r7y.jpg", true),
		p("2", "FIFA 2024", "Latest football simulation with updated teams and enhanced gameplay", "49.99", "Sports", img+"co5x98.jpg", false),
		p("3", "The Legend of Zelda: Tears of the Kingdom", "Epic adventure in the kingdom of Hyrule with new abilities and story", "54.99", "Adventure", img+"co5x8v.jpg", true),
		p("4", "Cyberpunk 2077: Phantom Liberty", "Open-world RPG set in Night City with enhanced gameplay and story", "49.99", "RPG", img+"co6wxo.jpg", true),
		p("5", "Minecraft Legends", "Action strategy game set in the Minecraft universe", "39.99", "Strategy", img+"co5x8t.jpg", false),
		p("6", "Starfield", "Epic space exploration RPG from Bethesda Game Studios", "69.99", "RPG", img+"co4q8k.jpg", true),
		p("7", "Spider-Man 2", "Swing through NYC as both Peter Parker and Miles Morales", "59.99", "Action", img+"co6hx4.jpg", true),
		p("8", "Baldur's Gate 3", "Critically acclaimed RPG with deep storytelling and combat", "54.99", "RPG", img+"co4k7m.jpg", true),
		p("9", "Forza Horizon 5", "Open-world racing game set in beautiful Mexico", "49.99", "Racing", img+"co4jni.jpg", false),
		p("10", "Resident Evil 4 Remake", "Survival horror classic rebuilt from the ground up", "54.99", "Horror", img+"co5x8w.jpg", true),
		p("11", "Super Mario Bros. Wonder", "New 2D Mario adventure with wonder flowers and elephant power-up", "49.99", "Platformer", img+"co6hx8.jpg", false),
		p("12", "Alan Wake 2", "Survival horror with dual protagonist storyline", "54.99", "Horror", img+"co6hx6.jpg", true),
	}
}
