package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedRegion struct {
	name         string
	state        string
	city         string
	latitude     float64
	longitude    float64
	isPriority   bool
	priorityRank int
}

type seedResource struct {
	category     string
	subcategory  string
	title        string
	description  string
	url          string
	companyURL   string
	badge        string
	displayOrder int
}

// Monitored freight corridors and port cities. Priority markets carry an
// explicit rank so the map highlights them first.
var regionData = []seedRegion{
	// North America
	{"Los Angeles, CA, USA", "CA", "Los Angeles", 34.0522, -118.2436, true, 1},
	{"Memphis, TN, USA", "TN", "Memphis", 35.1495, -90.0489, true, 2},
	{"Chicago, IL, USA", "IL", "Chicago", 41.8781, -87.6298, false, 0},
	{"Dallas, TX, USA", "TX", "Dallas", 32.7766, -96.7969, false, 0},
	{"Houston, TX, USA", "TX", "Houston", 29.7604, -95.3698, false, 0},
	{"Newark, NJ, USA", "NJ", "Newark", 40.7357, -74.1724, false, 0},
	{"Miami, FL, USA", "FL", "Miami", 25.7616, -80.1917, false, 0},
	{"Atlanta, GA, USA", "GA", "Atlanta", 33.7489, -84.3879, false, 0},
	{"Seattle, WA, USA", "WA", "Seattle", 47.6062, -122.3320, false, 0},
	{"Toronto, ON, Canada", "ON", "Toronto", 43.6532, -79.3832, false, 0},
	{"Vancouver, BC, Canada", "BC", "Vancouver", 49.2827, -123.1207, false, 0},
	{"Montreal, QC, Canada", "QC", "Montreal", 45.5017, -73.5673, false, 0},
	{"Mexico City, Mexico", "MX", "Mexico City", 19.4326, -99.1332, false, 0},
	{"Monterrey, Mexico", "NL", "Monterrey", 25.6866, -100.3161, false, 0},

	// Europe
	{"London, United Kingdom", "UK", "London", 51.5074, -0.1278, true, 3},
	{"Rotterdam, Netherlands", "NL", "Rotterdam", 51.9225, 4.4792, false, 0},
	{"Hamburg, Germany", "DE", "Hamburg", 53.5511, 9.9937, false, 0},
	{"Antwerp, Belgium", "BE", "Antwerp", 51.2194, 4.4025, false, 0},
	{"Paris, France", "FR", "Paris", 48.8566, 2.3522, false, 0},
	{"Barcelona, Spain", "ES", "Barcelona", 41.3851, 2.1734, false, 0},
	{"Milan, Italy", "IT", "Milan", 45.4642, 9.1900, false, 0},
	{"Warsaw, Poland", "PL", "Warsaw", 52.2297, 21.0122, false, 0},
	{"Prague, Czech Republic", "CZ", "Prague", 50.0755, 14.4378, false, 0},
	{"Athens, Greece", "GR", "Athens", 37.9838, 23.7275, false, 0},

	// Asia
	{"Singapore", "SG", "Singapore", 1.3521, 103.8198, true, 4},
	{"Shanghai, China", "CN", "Shanghai", 31.2304, 121.4737, false, 0},
	{"Hong Kong", "HK", "Hong Kong", 22.3193, 114.1694, false, 0},
	{"Tokyo, Japan", "JP", "Tokyo", 35.6762, 139.6503, false, 0},
	{"Seoul, South Korea", "KR", "Seoul", 37.5665, 126.9780, false, 0},
	{"Dubai, UAE", "AE", "Dubai", 25.2048, 55.2708, false, 0},
	{"Mumbai, India", "IN", "Mumbai", 19.0760, 72.8777, false, 0},
	{"Bangkok, Thailand", "TH", "Bangkok", 13.7563, 100.5018, false, 0},
	{"Jakarta, Indonesia", "ID", "Jakarta", -6.2088, 106.8456, false, 0},
	{"Kuala Lumpur, Malaysia", "MY", "Kuala Lumpur", 3.1390, 101.6869, false, 0},

	// Middle East
	{"Istanbul, Turkey", "TR", "Istanbul", 41.0082, 28.9784, false, 0},
	{"Jeddah, Saudi Arabia", "SA", "Jeddah", 21.5433, 39.1728, false, 0},
	{"Tel Aviv, Israel", "IL", "Tel Aviv", 32.0853, 34.7818, false, 0},

	// Africa
	{"Johannesburg, South Africa", "ZA", "Johannesburg", -26.2041, 28.0473, false, 0},
	{"Lagos, Nigeria", "NG", "Lagos", 6.5244, 3.3792, false, 0},
	{"Cairo, Egypt", "EG", "Cairo", 30.0444, 31.2357, false, 0},
	{"Nairobi, Kenya", "KE", "Nairobi", -1.2864, 36.8172, false, 0},

	// South America
	{"São Paulo, Brazil", "BR", "São Paulo", -23.5505, -46.6333, false, 0},
	{"Buenos Aires, Argentina", "AR", "Buenos Aires", -34.6037, -58.3816, false, 0},
	{"Lima, Peru", "PE", "Lima", -12.0464, -77.0428, false, 0},
	{"Bogotá, Colombia", "CO", "Bogotá", 4.7110, -74.0721, false, 0},
	{"Santiago, Chile", "CL", "Santiago", -33.4489, -70.6693, false, 0},

	// Oceania
	{"Sydney, Australia", "AU", "Sydney", -33.8688, 151.2093, false, 0},
	{"Melbourne, Australia", "AU", "Melbourne", -37.8136, 144.9631, false, 0},
	{"Auckland, New Zealand", "NZ", "Auckland", -36.8485, 174.7633, false, 0},
}

var resourceData = []seedResource{
	{"product", "gps_tracking", "CargoSafe GPS Tracker",
		"Real-time GPS tracking with tamper alerts and geofencing. Battery life up to 30 days.",
		"https://example.com/cargosafe", "", "Partner", 1},
	{"product", "physical_security", "SmartSeal Electronic Locks",
		"Bluetooth-enabled trailer locks with instant breach notifications to your phone.",
		"https://example.com/smartseal", "", "Featured", 2},
	{"educational", "guide", "Cargo Theft Prevention Guide",
		"Comprehensive 50-page guide covering best practices, risk assessment, and security protocols.",
		"https://example.com/guide", "", "Guide", 3},
	{"partnership", "industry", "CargoNet Partnership",
		"CargoWatch integrates with CargoNet's national cargo theft database for enhanced tracking.",
		"https://cargonet.com", "https://cargonet.com", "Partner", 4},
	{"partnership", "industry", "FBI Cargo Theft Program",
		"Direct reporting channel to FBI's Cargo Theft Program for high-value incidents.",
		"https://fbi.gov/investigate/violent-crime/cargo-theft", "", "Partner", 5},
	{"product", "surveillance", "TrailerCam 360° Security System",
		"24/7 video surveillance with motion detection and cloud storage. Solar-powered option available.",
		"https://example.com/trailercam", "", "Featured", 6},
}

func main() {
	// Load .env file
	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found")
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	log.Println("Seeding regions...")
	for _, r := range regionData {
		var rank interface{}
		if r.isPriority {
			rank = r.priorityRank
		}
		_, err := db.Exec(`
			INSERT INTO regions (name, state, city, latitude, longitude, is_priority, priority_rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO UPDATE
			SET state = EXCLUDED.state,
			    city = EXCLUDED.city,
			    latitude = EXCLUDED.latitude,
			    longitude = EXCLUDED.longitude,
			    is_priority = EXCLUDED.is_priority,
			    priority_rank = EXCLUDED.priority_rank,
			    updated_at = NOW()
		`, r.name, r.state, r.city, r.latitude, r.longitude, r.isPriority, rank)
		if err != nil {
			log.Fatalf("Failed to seed region %q: %v", r.name, err)
		}
	}
	log.Printf("Seeded %d regions", len(regionData))

	log.Println("Seeding resources...")
	for _, res := range resourceData {
		var companyURL interface{}
		if res.companyURL != "" {
			companyURL = res.companyURL
		}
		_, err := db.Exec(`
			INSERT INTO resources (category, subcategory, title, description, url, company_url, badge, display_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
			ON CONFLICT (title) DO UPDATE
			SET category = EXCLUDED.category,
			    subcategory = EXCLUDED.subcategory,
			    description = EXCLUDED.description,
			    url = EXCLUDED.url,
			    company_url = EXCLUDED.company_url,
			    badge = EXCLUDED.badge,
			    display_order = EXCLUDED.display_order,
			    updated_at = NOW()
		`, res.category, res.subcategory, res.title, res.description, res.url, companyURL, res.badge, res.displayOrder)
		if err != nil {
			log.Fatalf("Failed to seed resource %q: %v", res.title, err)
		}
	}
	log.Printf("Seeded %d resources", len(resourceData))

	log.Println("Recomputing region incident counts...")
	result, err := db.Exec(`
		UPDATE regions r
		SET incident_count = counts.n,
		    updated_at = NOW()
		FROM (
			SELECT r2.id, COUNT(i.id) AS n
			FROM regions r2
			LEFT JOIN incidents i ON i.region = r2.name
			GROUP BY r2.id
		) counts
		WHERE counts.id = r.id AND r.incident_count IS DISTINCT FROM counts.n
	`)
	if err != nil {
		log.Fatalf("Failed to recompute incident counts: %v", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		log.Printf("Updated incident counts for %d regions", n)
	}

	log.Println("Database seeded successfully!")
}
