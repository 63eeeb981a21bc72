package generator

import (
	"math/rand"
	"sync"
	"time"
)

var (
	FrontendFrameworkTopics = []string{
		"React", "Vue.js", "Angular", "Svelte", "SolidJS", "Qwik", "Preact",
		"Next.js", "Nuxt.js", "SvelteKit", "Astro", "Remix", "Gatsby",
		"RedwoodJS", "Blitz.js", "Fresh", "Waku", "FeathersJS",
	}

	BackendFrameworkTopics = []string{
		"Express", "Fastify", "NestJS", "Koa", "Hapi", "AdonisJS",
		"LoopBack", "Sails.js", "Moleculer",
	}

	CloudPlatformTopics = []string{
		"Amazon Web Services (AWS)", "Microsoft Azure", "Google Cloud Platform (GCP)",
		"Docker Cloud", "Koyeb", "Deno Deploy", "Bun Cloud",
		"AWS Lambda (Serverless)", "Google Cloud Run", "Azure Functions",
	}

	HostingTopics = []string{
		"Vercel", "Netlify", "Cloudflare", "Fly.io", "Render", "DigitalOcean",
		"Heroku", "Railway", "Supabase", "Firebase", "PlanetScale", "Neon", "PocketBase",
	}

	AIProviderTopics = []string{
		"OpenAI API", "Anthropic Claude API", "Google Gemini API", "Mistral API",
		"Cohere API", "xAI (Grok API)", "Together AI API", "Perplexity API",
		"Groq API", "Replicate API", "Hugging Face Inference API",
		"Ollama API", "LM Studio API",
	}

	WebDevGeneralTopics = []string{
		"TypeScript", "Frontend Development", "Backend Development", "Web Security",
		"Performance Optimization", "Authentication & Authorization", "API Development",
		"Database Management", "State Management", "Build Tools & Bundlers",
		"Testing & Debugging", "CI/CD & DevOps", "UI/UX Design", "Accessibility (A11y)",
		"SEO & Web Analytics", "Server-Side Rendering (SSR)", "Static Site Generation (SSG)",
		"Progressive Web Apps (PWA)", "Cloud & Deployment", "Version Control (Git)",
		"Package Management", "WebSockets & Real-Time Apps",
		"Documentation & Developer Experience",
	}
)

// TopicSelection is the set of subjects one generated post should cover.
type TopicSelection struct {
	Frontend []string
	Backend  []string
	Cloud    []string
	Hosting  []string
	AI       []string
	General  []string
}

// All returns every selected topic in category order.
func (s TopicSelection) All() []string {
	var all []string
	for _, group := range [][]string{s.Frontend, s.Backend, s.Cloud, s.Hosting, s.AI, s.General} {
		all = append(all, group...)
	}
	return all
}

// PickRandom returns between minCount and maxCount distinct elements of
// items, both bounds clamped to len(items). Order follows a random permutation.
func PickRandom[T any](rng *rand.Rand, items []T, minCount, maxCount int) []T {
	n := len(items)
	if minCount < 0 {
		minCount = 0
	}
	if maxCount > n {
		maxCount = n
	}
	if minCount > maxCount {
		minCount = maxCount
	}
	if maxCount <= 0 {
		return []T{}
	}

	count := minCount
	if maxCount > minCount {
		count += rng.Intn(maxCount - minCount + 1)
	}

	out := make([]T, 0, count)
	for _, i := range rng.Perm(n)[:count] {
		out = append(out, items[i])
	}
	return out
}

// TopicSelector picks a randomized mix of topics for each post. It is safe
// for concurrent use.
type TopicSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTopicSelector creates a selector. A zero seed uses the current time.
func NewTopicSelector(seed int64) *TopicSelector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TopicSelector{rng: rand.New(rand.NewSource(seed))}
}

// Select draws one framework or platform from the narrow categories and a
// couple of general themes.
func (s *TopicSelector) Select() TopicSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return TopicSelection{
		Frontend: PickRandom(s.rng, FrontendFrameworkTopics, 0, 1),
		Backend:  PickRandom(s.rng, BackendFrameworkTopics, 0, 1),
		Cloud:    PickRandom(s.rng, CloudPlatformTopics, 0, 1),
		Hosting:  PickRandom(s.rng, HostingTopics, 0, 1),
		AI:       PickRandom(s.rng, AIProviderTopics, 0, 1),
		General:  PickRandom(s.rng, WebDevGeneralTopics, 1, 2),
	}
}
