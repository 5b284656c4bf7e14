// Package directory holds the fixed roster of synthetic profiles used by nearby-user discovery.
package directory

import "dream_weaver/internal/models"

var roster = []models.DirectoryUser{
	{
		ID:        "user1",
		Username:  "LunaDreamer",
		AvatarURL: "https://picsum.photos/id/1005/50/50",
		Bio:       "Exploring the cosmic canvas of subconscious thoughts. Every dream is a hidden message.",
		Latitude:  34.0522, // Los Angeles
		Longitude: -118.2437,
		Dreams: []models.DirectoryDream{
			{ID: "d101", Title: "Flight with Feathered Friends", Body: "Dreamed I was soaring with a flock of iridescent birds over a city made of glass."},
			{ID: "d102", Title: "Lost Library of Whispers", Body: "Wandered through an endless library where books whispered forgotten stories. Found a map to a hidden realm."},
		},
	},
	{
		ID:        "user2",
		Username:  "StarlightSeeker",
		AvatarURL: "https://picsum.photos/id/1006/50/50",
		Bio:       "A humble traveler through the night's tapestry, collecting stardust and strange tales.",
		Latitude:  34.0736, // Beverly Hills
		Longitude: -118.4004,
		Dreams: []models.DirectoryDream{
			{ID: "d201", Title: "Meeting the Shadow Puppeteer", Body: "Encountered a mysterious figure who animated shadows into living beings. Learned the art of illusion."},
			{ID: "d202", Title: "Underwater City of Coral", Body: "Breathed underwater in a vibrant city built entirely from living coral. Communicated with glowing fish."},
		},
	},
	{
		ID:        "user3",
		Username:  "EchoWeaver",
		AvatarURL: "https://picsum.photos/id/1008/50/50",
		Bio:       "Weaving echoes of memories and future visions into a tapestry of dreams. Always seeking resonance.",
		Latitude:  34.0195, // Santa Monica
		Longitude: -118.4912,
		Dreams: []models.DirectoryDream{
			{ID: "d301", Title: "The Clockwork Forest", Body: "Walked through a forest where trees had gears and leaves were made of polished brass, ticking softly."},
			{ID: "d302", Title: "Mirror Maze of Reflections", Body: "Lost in a maze of infinite reflections, each mirror showing a different possible self. Found the true path eventually."},
		},
	},
	{
		ID:        "user4",
		Username:  "NightWhisper",
		AvatarURL: "https://picsum.photos/id/1011/50/50",
		Bio:       "Listening to the secrets the night reveals. Dreams are whispers from another reality.",
		Latitude:  40.7128, // New York City
		Longitude: -74.0060,
		Dreams: []models.DirectoryDream{
			{ID: "d401", Title: "Silent Carnival of Stars", Body: "Attended a silent carnival held under a sky full of dancing stars. Rode a carousel powered by constellations."},
		},
	},
	{
		ID:        "user5",
		Username:  "MythicMind",
		AvatarURL: "https://picsum.photos/id/1012/50/50",
		Bio:       "Drawing inspiration from ancient myths and legends. My dreams are sagas waiting to be told.",
		Latitude:  51.5074, // London
		Longitude: -0.1278,
		Dreams: []models.DirectoryDream{
			{ID: "d501", Title: "Guardian of the Crystal Caves", Body: "Became the guardian of crystal caves, protecting shimmering dragons and their luminous eggs."},
		},
	},
	{
		ID:        "user6",
		Username:  "DreamArchitect",
		AvatarURL: "https://picsum.photos/id/1015/50/50",
		Bio:       "Building worlds one dream at a time. The architect of the subconscious.",
		Latitude:  34.0207, // Culver City
		Longitude: -118.3966,
		Dreams: []models.DirectoryDream{
			{ID: "d601", Title: "Infinite Staircase to the Sky", Body: "Climbed a never-ending staircase that led to a sky filled with unknown galaxies and celestial beings."},
		},
	},
	{
		ID:        "user7",
		Username:  "PixelDreamer",
		AvatarURL: "https://picsum.photos/id/1016/50/50",
		Bio:       "Dreams rendered in 8-bit. Retro-futurist visions from the edge of sleep.",
		Latitude:  -23.5505, // São Paulo
		Longitude: -46.6333,
		Dreams: []models.DirectoryDream{
			{ID: "d701", Title: "Jungle of Glowing Flora", Body: "Explored a bioluminescent jungle where every plant pulsed with soft, hypnotic light."},
		},
	},
	{
		ID:        "user8",
		Username:  "ZenSleeper",
		AvatarURL: "https://picsum.photos/id/1018/50/50",
		Bio:       "Finding peace in the dream realms. Serenity is the ultimate journey.",
		Latitude:  34.0452, // Downtown LA
		Longitude: -118.2570,
		Dreams: []models.DirectoryDream{
			{ID: "d801", Title: "Floating Island of Meditation", Body: "Meditated on a small, silent island floating above the clouds, surrounded by pure white light."},
		},
	},
	{
		ID:        "user9",
		Username:  "CodeDreamer",
		AvatarURL: "https://picsum.photos/id/1020/50/50",
		Bio:       "My dreams are algorithms, constantly compiling new realities.",
		Latitude:  37.7749, // San Francisco
		Longitude: -122.4194,
		Dreams: []models.DirectoryDream{
			{ID: "d901", Title: "Circuit City of Logic", Body: "Navigated a city where buildings were circuit boards and traffic flowed like data streams."},
		},
	},
	{
		ID:        "user10",
		Username:  "WanderlustMind",
		AvatarURL: "https://picsum.photos/id/1021/50/50",
		Bio:       "The world is my dream canvas. Always seeking new horizons.",
		Latitude:  34.0805, // Hollywood
		Longitude: -118.3398,
		Dreams: []models.DirectoryDream{
			{ID: "d1001", Title: "Desert of Singing Sands", Body: "Crossed a vast desert where the sands hummed ancient tunes, guided by a mirage-like caravan."},
		},
	},
}

// All returns a copy of the roster in its natural order. Callers may not mutate the roster.
func All() []models.DirectoryUser {
	users := make([]models.DirectoryUser, len(roster))
	for i, u := range roster {
		users[i] = clone(u)
	}
	return users
}

func ByID(id string) (models.DirectoryUser, bool) {
	for _, u := range roster {
		if u.ID == id {
			return clone(u), true
		}
	}
	return models.DirectoryUser{}, false
}

func clone(u models.DirectoryUser) models.DirectoryUser {
	u.Dreams = append([]models.DirectoryDream(nil), u.Dreams...)
	return u
}
