// Package config loads the domkit configuration file.
//
// The file is domkit.json at the working directory by default. A .yaml,
// .yml or .toml file is parsed by extension. Missing fields keep their
// defaults.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "apiBase": "/api",
//	    "authToken": "123",
//	    "metricsPath": "/metrics",
//	    "wsPath": "/ws"
//	  },
//	  "hub": {
//	    "dataHub": "dataHub",
//	    "metrics": true,
//	    "tracing": false
//	  },
//	  "loop": {
//	    "frameInterval": "16ms",
//	    "queueSize": 256
//	  },
//	  "export": {
//	    "bucket": "quotes-backup",
//	    "prefix": "quotes/",
//	    "region": "us-east-1"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    errors.PrintError(os.Stderr, err)
//	    os.Exit(1)
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
