package repository

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "repository")
