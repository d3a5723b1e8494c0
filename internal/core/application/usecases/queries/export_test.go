package queries

// NearbyCandidateLimit exposes the prefilter row cap to the external test package.
const NearbyCandidateLimit = nearbyCandidateLimit
