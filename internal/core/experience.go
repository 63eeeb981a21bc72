package core

import "slices"

// ExperienceType is the CMS type name of a work history entry.
const ExperienceType = "experience"

// Experience is one position in the work history shown on the home page.
type Experience struct {
	ID       string   `json:"_id,omitempty"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Range    string   `json:"range"` // Display text, e.g. "Jan. 2024 - Present"
	Duties   []string `json:"duties"`
	Order    int      `json:"order"` // Lower numbers are listed first
}

// Project is a portfolio project card.
type Project struct {
	Name   string
	Info   string
	Techs  []string
	Demo   string
	GitHub string
}

// SortExperience orders entries by Order, keeping the input order for ties.
func SortExperience(entries []Experience) {
	slices.SortStableFunc(entries, func(a, b Experience) int {
		return a.Order - b.Order
	})
}

// DefaultExperience returns the built-in work history. It is shown when the
// CMS has no experience documents and is what seed-experience writes.
func DefaultExperience() []Experience {
	return []Experience{
		{
			Title:    "Software Engineer",
			Company:  "Seansoft Corporation",
			Location: "Makati City, Philippines (Remote)",
			Range:    "Jan. 2024 - Present",
			Duties:   []string{},
			Order:    0,
		},
		{
			Title:    "Full Stack Web Developer",
			Company:  "Evelan GmbH",
			Location: "Hamburg, Germany (Remote)",
			Range:    "Aug. 2023 - Dec. 2023",
			Duties: []string{
				"Joined an existing project aimed at developing and enhancing an all-in-one management system for master data, company holdings, tasks and documents of corporate and holding structures.",
				"Created responsive React web components utilizing Chakra UI, ensuring an intuitive user interface.",
				"Developed backend API within Next.js using tRPC for integrated, high-performance functionality.",
				"Created unit tests using jest to guarantee flawless functionality of core business logic.",
				"Designed and optimized PostgreSQL database schemas using Prisma for efficient data structure and accessibility.",
				"Established unified client-server validation using Zod, ensuring seamless data integrity across the system.",
				"Collaborated with designers, project managers, and other engineers to deliver high quality products for clients.",
				"Took charge of reviewing pull requests and refining onboarding procedures, enhancing team productivity and effectiveness.",
			},
			Order: 1,
		},
		{
			Title:    "Software Engineer",
			Company:  "Beyonder Inc.",
			Location: "Makati City, Philippines (Remote)",
			Range:    "Feb. 2022 - Aug. 2023",
			Duties: []string{
				"Developed robust, full-stack applications for diverse clients using React, React Native, Node.js, and Tailwind CSS.",
				"Implemented CI/CD pipelines using GitHub Actions for automated and efficient deployment workflows.",
				"Created prototypes using Figma to visualize design concepts and guide the development process.",
				"Successfully delivered multiple full-stack web and mobile applications, including Kokuban, スマホdeマップ, and Doko?.",
				"Worked remotely and collaborated with teams of engineers to ensure project success.",
				"Led the front-end development team, mentoring junior developers and fostering a collaborative, high-achieving environment.",
			},
			Order: 2,
		},
		{
			Title:    "Full Stack Developer",
			Company:  "Freelance",
			Location: "Bulacan, Philippines (Remote)",
			Range:    "Apr. 2021 - Feb. 2022",
			Duties: []string{
				"Collaborated with a team of three developers to deliver web applications for small businesses and individuals, utilizing skills in ReactJS, NextJS, and other relevant technologies.",
				"Translated PSD designs into high-quality web pages, ensuring a seamless user experience.",
				"Created prototypes using Figma to guide the development process.",
			},
			Order: 3,
		},
	}
}

// DefaultProjects returns the project cards listed on the home page.
func DefaultProjects() []Project {
	return []Project{
		{
			Name:   "Batibot",
			Info:   "An AI-powered messaging companion that helps you find the right information and services for your needs.",
			Techs:  []string{"React Native CLI", "Typescript", "Tailwind CSS", "OpenAI API", "Supabase"},
			Demo:   "https://play.google.com/store/apps/details?id=com.zomeru.batibot",
			GitHub: "https://github.com/zomeru/batibot-app",
		},
		{
			Name:   "Zomify",
			Info:   "A Spotify clone built with SvelteKit, Typescript, and Tailwind CSS.",
			Techs:  []string{"SvelteKit", "Typescript", "Tailwind CSS", "Spotify API"},
			Demo:   "https://zomify.vercel.app",
			GitHub: "https://github.com/zomeru/zomify",
		},
		{
			Name:   "STICA LMS",
			Info:   "An online library management system for STI College Alabang.",
			Techs:  []string{"Typescript", "React.js", "Next.js", "Turborepo", "Tailwind CSS", "Firebase", "Algolia"},
			Demo:   "https://sticalms.com/",
			GitHub: "https://github.com/zomeru/stica-lms",
		},
		{
			Name:   "Kokuban",
			Info:   "Helps teachers in Japan create online educational materials that their students can use from the browser.",
			Techs:  []string{"Typescript", "React.js", "Next.js", "Tailwind CSS", "Node.js", "MongoDB", "Firebase"},
			Demo:   "https://kokuban.vercel.app/",
			GitHub: "https://github.com/Yumeville/kokuban",
		},
		{
			Name:   "Zomink",
			Info:   "An open-source link management platform to manage, track, and shorten URLs with custom aliases.",
			Techs:  []string{"Typescript", "React.js", "Next.js", "Tailwind CSS", "Node.js", "MongoDB"},
			Demo:   "https://zom.ink/",
			GitHub: "https://github.com/zomeru/zomink",
		},
		{
			Name:   "Paymongo.js",
			Info:   "A lightweight, modular, typescript-compatible javascript library for Paymongo.",
			Techs:  []string{"Node.js", "TypeScript", "Paymongo"},
			Demo:   "https://www.npmjs.com/package/paymongo.js",
			GitHub: "https://github.com/omsimos/paymongo.js",
		},
	}
}
