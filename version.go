package autopage

// Version is the current version of the go-autopage library
const Version = "1.0.0"
