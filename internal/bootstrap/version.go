package bootstrap

// Version is set at build time with -ldflags "-X .../bootstrap.Version=...".
var Version = "1.0.0"
