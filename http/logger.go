package http

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "http")
